package llm

import (
	"context"
	"net/http"
	"testing"

	"proposal-generator/internal/config"
)

func TestNewProviderConfig_CopiesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Endpoint = "https://example.test/v1/messages"
	cfg.LLM.AuthMode = "header-key"
	cfg.LLM.BodyShape = "anthropic"
	cfg.LLM.APIKey = "k"
	cfg.LLM.ExtraHeaders = map[string]string{"anthropic-version": "2023-06-01"}

	pc := NewProviderConfig(cfg)
	cfg.LLM.ExtraHeaders["anthropic-version"] = "mutated"

	if pc.ExtraHeaders["anthropic-version"] != "2023-06-01" {
		t.Error("provider config must not alias the config's header map")
	}
	if !pc.HasCredential() {
		t.Error("expected credential")
	}
	if err := pc.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProviderConfig_KeyName(t *testing.T) {
	t.Parallel()

	if got := (ProviderConfig{APIKeyEnv: "GROQ_API_KEY"}).KeyName(); got != "GROQ_API_KEY" {
		t.Errorf("KeyName = %q", got)
	}
	if got := (ProviderConfig{}).KeyName(); got != "LLM_API_KEY" {
		t.Errorf("KeyName = %q", got)
	}
}

func TestProviderConfig_Authorize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		cfg   ProviderConfig
		check func(t *testing.T, req *http.Request)
	}{
		{
			name: "header-key default header",
			cfg:  ProviderConfig{AuthMode: AuthHeaderKey, APIKey: "secret"},
			check: func(t *testing.T, req *http.Request) {
				if req.Header.Get("x-api-key") != "secret" {
					t.Errorf("x-api-key = %q", req.Header.Get("x-api-key"))
				}
			},
		},
		{
			name: "header-key custom header",
			cfg:  ProviderConfig{AuthMode: AuthHeaderKey, AuthHeader: "x-goog-api-key", APIKey: "secret"},
			check: func(t *testing.T, req *http.Request) {
				if req.Header.Get("x-goog-api-key") != "secret" || req.Header.Get("x-api-key") != "" {
					t.Errorf("headers = %v", req.Header)
				}
			},
		},
		{
			name: "query-key keeps existing parameters",
			cfg:  ProviderConfig{AuthMode: AuthQueryKey, APIKey: "secret"},
			check: func(t *testing.T, req *http.Request) {
				q := req.URL.Query()
				if q.Get("key") != "secret" || q.Get("alt") != "json" {
					t.Errorf("query = %q", req.URL.RawQuery)
				}
			},
		},
		{
			name: "bearer-token",
			cfg:  ProviderConfig{AuthMode: AuthBearerToken, APIKey: "secret"},
			check: func(t *testing.T, req *http.Request) {
				if req.Header.Get("Authorization") != "Bearer secret" {
					t.Errorf("Authorization = %q", req.Header.Get("Authorization"))
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req, err := tc.cfg.NewJSONRequest(context.Background(), "https://example.test/generate?alt=json", []byte(`{}`))
			if err != nil {
				t.Fatalf("NewJSONRequest: %v", err)
			}
			if req.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", req.Header.Get("Content-Type"))
			}
			tc.check(t, req)
		})
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := ProviderConfig{Name: "x", Endpoint: "https://e", AuthMode: AuthBearerToken, BodyShape: ShapeOpenAIChat}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	noEndpoint := valid
	noEndpoint.Endpoint = ""
	if noEndpoint.Validate() == nil {
		t.Error("expected error without endpoint")
	}

	badAuth := valid
	badAuth.AuthMode = "cookie"
	if badAuth.Validate() == nil {
		t.Error("expected error for unknown auth mode")
	}

	if _, err := badAuth.NewJSONRequest(context.Background(), "https://e", nil); err == nil {
		t.Error("expected NewJSONRequest to reject unknown auth mode")
	}
}
