package apps

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your submitted applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		mine, err := ws.MyApplications(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}
		if len(mine) == 0 {
			pterm.Info.Println("You have not applied to any jobs")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tJOB\tSTATUS\tSUBMITTED")
		for _, app := range mine {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", app.ID, app.JobID, app.Status, app.CreatedAt.Std().Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}
