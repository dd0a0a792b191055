package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show marketplace statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		count, err := ws.MemberCount(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch member count: %w", err)
		}
		pterm.Info.Printf("Registered members: %d\n", count)
		return nil
	},
}
