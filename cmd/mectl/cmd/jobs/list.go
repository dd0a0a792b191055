package jobs

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all published jobs",
	Long:  `Lists every published job on the marketplace. Available without logging in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		jobs, err := ws.PublishedJobs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			pterm.Info.Println("No published jobs")
			return nil
		}
		printJobTable(jobs)
		return nil
	},
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your own job postings",
	Long:  `Lists all jobs you own, published or not. Requires an employer account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		jobs, err := ws.MyJobs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list your jobs: %w", err)
		}
		if len(jobs) == 0 {
			pterm.Info.Println("You have no job postings")
			return nil
		}
		printJobTable(jobs)
		return nil
	},
}
