package jobs

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search published jobs",
	Long:  `Searches published jobs by title, description, location, and skills.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		term := strings.Join(args, " ")
		jobs, err := ws.SearchJobs(cmd.Context(), term)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(jobs) == 0 {
			pterm.Info.Printf("No jobs matching %q\n", term)
			return nil
		}
		printJobTable(jobs)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		job, err := ws.Job(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to fetch job: %w", err)
		}
		if job == nil {
			return fmt.Errorf("job %s not found", args[0])
		}
		printJobDetail(*job)
		return nil
	},
}
