package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk"
)

var (
	oidcIssuer   string
	oidcClientID string
	devUser      string
	devAdmin     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the marketplace",
	Long: `Authenticates with the m-employed server.

Two methods are supported:
1. OIDC device flow (--issuer and --client-id): initiates a device
   authorization flow against an external identity provider.
2. Dev token login (--user): requests a development token directly from the
   dev server. Intended for local development only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		switch {
		case oidcIssuer != "" && oidcClientID != "":
			cfg.Provider.SetAuthenticator(&sdk.DeviceFlowAuthenticator{
				Issuer:   oidcIssuer,
				ClientID: oidcClientID,
				Prompt: func(userCode, verificationURI, verificationURIComplete string) {
					pterm.Info.Printf("Visit %s and enter code %s\n", verificationURI, userCode)
					if verificationURIComplete != "" {
						pterm.Info.Printf("Or open %s directly\n", verificationURIComplete)
					}
				},
			})
		case devUser != "":
			cfg.Provider.SetAuthenticator(&sdk.DevTokenAuthenticator{
				BaseURL: cfg.ServerURL,
				User:    devUser,
				Admin:   devAdmin,
			})
		default:
			return fmt.Errorf("choose a login method: --issuer/--client-id for OIDC, or --user for a dev token")
		}

		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}
		if err := ws.Session().Login(cmd.Context()); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		identity, _ := ws.Session().Identity()
		pterm.Success.Printf("Logged in as %s\n", identity)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&oidcIssuer, "issuer", "", "OIDC issuer URL for device flow login")
	loginCmd.Flags().StringVar(&oidcClientID, "client-id", "", "OIDC client ID for device flow login")
	loginCmd.Flags().StringVar(&devUser, "user", "", "User name for dev token login")
	loginCmd.Flags().BoolVar(&devAdmin, "admin", false, "Request an admin dev token")
}
