package apps

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk"
)

var (
	applyMessage   string
	applyPortfolio string
)

var applyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Apply to a published job",
	Long: `Submits an application for a published job. Requires a candidate
account, a non-empty cover message, and no prior application for the job.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		raw, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}
		id, err := ws.ApplyToJob(cmd.Context(), sdk.JobID(raw), sdk.ApplyInput{
			Message:      applyMessage,
			PortfolioURL: applyPortfolio,
		})
		if err != nil {
			return fmt.Errorf("failed to apply: %w", err)
		}
		pterm.Success.Printf("Application %s submitted\n", id)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyMessage, "message", "", "Cover message (required)")
	applyCmd.Flags().StringVar(&applyPortfolio, "portfolio", "", "Portfolio URL")
}
