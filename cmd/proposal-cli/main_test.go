package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"proposal-generator/internal/proposal"
	"proposal-generator/pkg/models"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PROPOSAL_CONFIG", "LLM_PROVIDER", "LLM_API_KEY", "LLM_ENDPOINT", "LLM_AUTH_MODE", "LLM_MODEL",
		"ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "GROQ_API_KEY", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fakeGroq(t *testing.T, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*seen = r.Header.Get("Authorization") + "|" + string(body)
		io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"CLI proposal"}}]}`) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_PrintsProposal(t *testing.T) {
	isolateEnv(t)

	var seen string
	srv := fakeGroq(t, &seen)
	t.Setenv("LLM_ENDPOINT", srv.URL)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	out, _, err := runCLI(t, "", "generate", "--provider", "groq", "--job", "Write a parser", "--skills", "Go")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.TrimSpace(out) != "CLI proposal" {
		t.Errorf("stdout = %q", out)
	}
	if !strings.HasPrefix(seen, "Bearer gsk-test|") || !strings.Contains(seen, "Write a parser") {
		t.Errorf("upstream saw %q", seen)
	}
}

func TestGenerate_ReadsStdin(t *testing.T) {
	isolateEnv(t)

	var seen string
	srv := fakeGroq(t, &seen)
	t.Setenv("LLM_ENDPOINT", srv.URL)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	out, _, err := runCLI(t, "  Migrate a Rails app  \n", "generate", "-p", "groq", "--job-file", "-", "--json")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, `"proposal": "CLI proposal"`) {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(seen, "Migrate a Rails app") {
		t.Errorf("upstream saw %q", seen)
	}
}

func TestGenerate_ReadsJobFile(t *testing.T) {
	isolateEnv(t)

	var seen string
	srv := fakeGroq(t, &seen)
	t.Setenv("LLM_ENDPOINT", srv.URL)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	path := filepath.Join(t.TempDir(), "job.html")
	if err := os.WriteFile(path, []byte("<p>Scrape <b>product</b> pages</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, "", "generate", "-p", "groq", "-f", path); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Contains(seen, "<b>") || !strings.Contains(seen, "Scrape product pages") {
		t.Errorf("upstream saw %q", seen)
	}
}

func TestGenerate_MissingDescription(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	_, stderr, err := runCLI(t, "", "generate")
	if err == nil {
		t.Fatal("expected an error")
	}
	if exitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", exitCode(err))
	}
	if strings.TrimSpace(stderr) != "Error: Job description is required" {
		t.Errorf("stderr = %q", stderr)
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		t.Errorf("err = %T, want it marked as already reported", err)
	}
}

func TestGenerate_JSONErrorBody(t *testing.T) {
	isolateEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"slow down"}}`) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	t.Setenv("LLM_ENDPOINT", srv.URL)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	_, stderr, err := runCLI(t, "", "generate", "-p", "groq", "--job", "Anything", "--json")
	if exitCode(err) != 4 {
		t.Errorf("exit code = %d, want 4", exitCode(err))
	}

	var body models.ErrorResponse
	if jsonErr := json.Unmarshal([]byte(stderr), &body); jsonErr != nil {
		t.Fatalf("stderr is not a single JSON body: %v\n%s", jsonErr, stderr)
	}
	if body.Error != "API request failed: Too Many Requests" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	isolateEnv(t)

	_, stderr, err := runCLI(t, "", "generate", "--job", "Anything")

	var failure *proposal.Error
	if !errors.As(err, &failure) || failure.Kind != proposal.KindConfiguration {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if exitCode(err) != 3 {
		t.Errorf("exit code = %d, want 3", exitCode(err))
	}
	if !strings.Contains(stderr, "ANTHROPIC_API_KEY") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestProviders_ListsPresets(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, "", "providers")
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	for _, want := range []string{"anthropic", "gemini", "groq", "GROQ_API_KEY", "bearer-token", "openai-chat", "Custom providers"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
