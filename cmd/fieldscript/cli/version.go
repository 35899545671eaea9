package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fieldscript/fieldscript/internal/version"
)

func newVersionCmd(ver, commit, date string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version":          ver,
				"commit":           commit,
				"built":            date,
				"go_version":       runtime.Version(),
				"os":               runtime.GOOS,
				"arch":             runtime.GOARCH,
				"prompt_version":   version.Prompt,
				"export_version":   version.Export,
				"template_version": version.Template,
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "fieldscript %s\n", ver)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:   %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:    %s\n", date)
			fmt.Fprintf(cmd.OutOrStdout(), "  go:       %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "  os/arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(cmd.OutOrStdout(), "  pipeline: %s / %s / %s\n", version.Prompt, version.Export, version.Template)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}
