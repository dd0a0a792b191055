package jobs

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
)

var publishCmd = &cobra.Command{
	Use:   "publish <job-id>",
	Short: "Publish a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPublication(cmd, args[0], true)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish <job-id>",
	Short: "Unpublish a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPublication(cmd, args[0], false)
	},
}

func setPublication(cmd *cobra.Command, arg string, published bool) error {
	cfg := config.MustFromContext(cmd.Context())
	ws, err := cfg.Provider.Workspace(cmd.Context())
	if err != nil {
		return err
	}

	id, err := parseJobID(arg)
	if err != nil {
		return err
	}
	if err := ws.ToggleJobPublication(cmd.Context(), id, published); err != nil {
		return fmt.Errorf("failed to change publication: %w", err)
	}
	if published {
		pterm.Success.Printf("Job %s is now published\n", id)
	} else {
		pterm.Success.Printf("Job %s is now unpublished\n", id)
	}
	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job posting you own",
	Long:  `Deletes a job posting along with all of its applications and message threads.`,
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
		if err := ws.DeleteJob(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		pterm.Success.Printf("Deleted job %s\n", id)
		return nil
	},
}
