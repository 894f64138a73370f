// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/whatif-advisor/internal/app"
	"github.com/doeshing/whatif-advisor/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	analyzeCmd := commands.NewAnalyzeCommand(container)

	root := &cobra.Command{
		Use:   "whatif-advisor [what-if file]",
		Short: "LLM-assisted review of Azure What-If output",
		Long: "whatif-advisor filters deterministic noise out of Azure deployment What-If output,\n" +
			"asks a configured reasoning model to assess the remaining changes, and can gate a\n" +
			"pull request on per-bucket risk thresholds.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			analyzeCmd.SetArgs(args)
			return analyzeCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(analyzeCmd)
	root.AddCommand(commands.NewAgentsCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}
