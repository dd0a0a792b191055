package jobs

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk"
)

var applicationsCmd = &cobra.Command{
	Use:   "applications <job-id>",
	Short: "List applications received for a job you own",
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
		apps, err := ws.JobApplications(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}
		if len(apps) == 0 {
			pterm.Info.Println("No applications yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCANDIDATE\tSTATUS\tSUBMITTED")
		for _, app := range apps {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", app.ID, app.Candidate, app.Status, app.CreatedAt.Std().Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <job-id> <application-id> <status>",
	Short: "Set the status of an application on a job you own",
	Long: `Sets the status of an application received for one of your jobs.
Valid statuses: submitted, reviewed, interview, rejected, hired.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		jobID, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		raw, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid application id %q", args[1])
		}
		appID := sdk.ApplicationID(raw)
		status := sdk.ApplicationStatus(args[2])

		if err := ws.UpdateApplicationStatus(cmd.Context(), jobID, appID, status); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		pterm.Success.Printf("Application %s is now %s\n", appID, status)
		return nil
	},
}

func init() {
	JobsCmd.AddCommand(statusCmd)
}
