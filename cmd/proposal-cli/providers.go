package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"proposal-generator/internal/config"
	"proposal-generator/internal/llm/providers"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the built-in LLM providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(config.ProviderPresets))
			for name := range config.ProviderPresets {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tAUTH\tBODY\tKEY ENV")
			for _, name := range names {
				preset := config.ProviderPresets[name]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, preset.Model, preset.AuthMode, preset.BodyShape, preset.APIKeyEnv)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			shapes := make([]string, 0, 3)
			for _, shape := range providers.SupportedShapes() {
				shapes = append(shapes, string(shape))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nCustom providers: set llm.endpoint, llm.auth_mode and llm.body_shape (%s).\n", strings.Join(shapes, ", "))
			return nil
		},
	}
}
