package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"proposal-generator/internal/logging"
	"proposal-generator/internal/proposal"
	"proposal-generator/pkg/models"
)

type generateOptions struct {
	job        string
	jobFile    string
	skills     string
	experience string
	asJSON     bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a proposal for a job description",
		Example: `  proposal-cli generate --job "Need a Go developer for a REST API" --skills "Go, PostgreSQL"
  proposal-cli generate --job-file posting.html --experience "6 years backend"
  pbpaste | proposal-cli generate --job-file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "job description text")
	cmd.Flags().StringVarP(&opts.jobFile, "job-file", "f", "", "read the job description from a file (- for stdin)")
	cmd.Flags().StringVarP(&opts.skills, "skills", "s", "", "your relevant skills")
	cmd.Flags().StringVarP(&opts.experience, "experience", "e", "", "your relevant experience")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the API response body (or error body on stderr) instead of plain text")
	cmd.MarkFlagsMutuallyExclusive("job", "job-file")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer logging.CloseLogging()

	description, err := opts.readJob(cmd.InOrStdin())
	if err != nil {
		return err
	}

	generator, err := proposal.NewGeneratorFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.Timeout)
	defer cancel()

	text, err := generator.Generate(ctx, models.ProposalRequest{
		JobDescription: description,
		Skills:         opts.skills,
		Experience:     opts.experience,
	})
	if err != nil {
		failure := proposal.AsError(err)
		body := failure.Response()
		if opts.asJSON {
			writeJSON(cmd.ErrOrStderr(), body)
		} else if body.Message != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %s\n", body.Error, body.Message)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", body.Error)
		}
		return &reportedError{err: failure}
	}

	if opts.asJSON {
		writeJSON(cmd.OutOrStdout(), models.ProposalResponse{Proposal: text})
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func (o *generateOptions) readJob(stdin io.Reader) (string, error) {
	switch {
	case o.job != "":
		return o.job, nil
	case o.jobFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read job description from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case o.jobFile != "":
		data, err := os.ReadFile(o.jobFile)
		if err != nil {
			return "", fmt.Errorf("read job description: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		// empty descriptions are rejected by the generator with the usual message
		return "", nil
	}
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logging.GetGlobalLogger().WithError(err).Error("Failed to write output")
	}
}

// exitCode maps a generation failure onto a process exit status
func exitCode(err error) int {
	var failure *proposal.Error
	if !errors.As(err, &failure) {
		return 1
	}
	switch failure.Kind {
	case proposal.KindValidation:
		return 2
	case proposal.KindConfiguration:
		return 3
	case proposal.KindUpstream, proposal.KindMalformedResponse:
		return 4
	default:
		return 1
	}
}
