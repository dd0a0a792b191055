package auth

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk/authz"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Session")
		creds := ws.Session().Credentials()
		if creds == nil {
			pterm.Info.Println("Not logged in")
			return nil
		}
		pterm.Info.Printf("Logged in as: %s\n", creds.Subject)
		pterm.Info.Printf("Token expires at: %s\n", creds.ExpiresAt.Format(time.RFC1123))

		access, err := ws.Access(cmd.Context())
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Access")
		pterm.Info.Printf("Account: %s\n", access.Level)
		if access.Admin {
			pterm.Info.Println("Platform role: admin")
		}
		if access.NeedsSetup() {
			pterm.Warning.Println("No profile yet; run `mectl profile setup` to choose an account type")
		}
		if access.Level == authz.Employer && access.Profile != nil {
			pterm.Info.Printf("Company: %s\n", access.Profile.CompanyName)
		}
		return nil
	},
}
