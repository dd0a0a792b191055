package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from the marketplace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}
		ws.Session().Logout()
		fmt.Println("Logged out successfully")
		return nil
	},
}
