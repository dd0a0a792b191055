package profile

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk"
)

var (
	setupType string
	setupName string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create your account profile",
	Long: `Creates your profile with the chosen account type. Running setup again
with a different type switches sides; profile details are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		accountType := sdk.AccountType(setupType)
		if err := ws.CreateAccount(cmd.Context(), accountType, setupName); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		pterm.Success.Printf("Account created as %s\n", accountType)
		return nil
	},
}

var (
	updateLocation    string
	updateDescription string
	updateCompany     string
	updateSkills      []string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile details",
	Long: `Updates your existing profile. Employer profiles must carry a company
name; skills apply to candidate profiles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		err = ws.UpdateProfile(cmd.Context(), sdk.UpdateProfileInput{
			Location:    updateLocation,
			Description: updateDescription,
			CompanyName: updateCompany,
			Skills:      updateSkills,
		})
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		pterm.Success.Println("Profile updated")
		return nil
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupType, "type", "", "Account type: candidate or employer (required)")
	setupCmd.Flags().StringVar(&setupName, "name", "", "Display name (required)")

	updateCmd.Flags().StringVar(&updateLocation, "location", "", "Location")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "About text")
	updateCmd.Flags().StringVar(&updateCompany, "company", "", "Company name (employer profiles)")
	updateCmd.Flags().StringSliceVar(&updateSkills, "skill", nil, "Skill (repeatable, candidate profiles)")
}
