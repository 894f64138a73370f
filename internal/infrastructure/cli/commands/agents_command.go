package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/whatif-advisor/internal/agents"
	"github.com/doeshing/whatif-advisor/internal/app"
	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
)

// NewAgentsCommand creates the risk bucket listing command.
func NewAgentsCommand(container *app.Container) *cobra.Command {
	var agentsDir string

	cmd := &cobra.Command{
		Use:     "agents",
		Aliases: []string{"buckets"},
		Short:   "List available risk buckets",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := buckets.NewRegistry()

			dir := agentsDir
			if dir == "" {
				cfg, err := container.ConfigProvider.Load(cmd.Context())
				if err != nil {
					return err
				}
				dir = cfg.Gate.AgentsDir
			}

			var warnings []string
			if dir != "" {
				loaded, loadWarnings := agents.LoadDirectory(dir)
				warnings = loadWarnings
				for _, bucket := range loaded {
					if err := registry.Register(bucket); err != nil {
						warnings = append(warnings, err.Error())
					}
				}
			}
			registry.Freeze()

			out := cmd.OutOrStdout()
			for _, id := range registry.IDs() {
				bucket, _ := registry.Resolve(id)
				printBucket(out, bucket)
			}
			for _, warning := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentsDir, "agents-dir", "", "Directory of custom risk bucket agent files")
	return cmd
}

func printBucket(out io.Writer, bucket domain.RiskBucket) {
	kind := "builtin"
	if bucket.Custom {
		kind = "custom"
	}
	suffix := ""
	if bucket.Optional {
		suffix = ", optional"
	}
	fmt.Fprintf(out, "%-16s %s (%s, threshold %s%s)\n",
		bucket.ID, bucket.DisplayName, kind, bucket.DefaultThreshold, suffix)
}
