package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/whatif-advisor/internal/app"
	configvalidate "github.com/doeshing/whatif-advisor/internal/application/config"
)

// NewConfigCommand creates the config inspection command.
func NewConfigCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := configvalidate.Validate(cfg); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: config invalid:", err)
			}
			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
	return cmd
}
