package jobs

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk"
)

var (
	createTitle       string
	createDescription string
	createLocation    string
	createType        string
	createSkills      []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job posting",
	Long: `Creates a new job posting owned by you. New postings start
unpublished; use "mectl jobs publish" to make them visible to candidates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		id, err := ws.CreateJob(cmd.Context(), sdk.CreateJobInput{
			Title:          createTitle,
			Description:    createDescription,
			Location:       createLocation,
			EmploymentType: createType,
			Skills:         createSkills,
		})
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		pterm.Success.Printf("Created job %s (unpublished)\n", id)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <job-id>",
	Short: "Update a job posting you own",
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
		err = ws.UpdateJob(cmd.Context(), id, sdk.CreateJobInput{
			Title:          createTitle,
			Description:    createDescription,
			Location:       createLocation,
			EmploymentType: createType,
			Skills:         createSkills,
		})
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		pterm.Success.Printf("Updated job %s\n", id)
		return nil
	},
}

func registerJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&createTitle, "title", "", "Job title (required)")
	cmd.Flags().StringVar(&createDescription, "description", "", "Job description (required)")
	cmd.Flags().StringVar(&createLocation, "location", "", "Job location")
	cmd.Flags().StringVar(&createType, "type", "", "Employment type (e.g. full-time, contract)")
	cmd.Flags().StringSliceVar(&createSkills, "skill", nil, "Required skill (repeatable)")
}

func init() {
	registerJobFlags(createCmd)
	registerJobFlags(updateCmd)
}
