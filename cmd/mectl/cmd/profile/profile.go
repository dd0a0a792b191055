package profile

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk"
)

// ProfileCmd is the parent command for profile operations
var ProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your marketplace profile",
	Long: `Commands for creating and updating your profile. An account is either
a candidate or an employer; re-running setup switches the type.`,
}

func init() {
	ProfileCmd.AddCommand(showCmd)
	ProfileCmd.AddCommand(setupCmd)
	ProfileCmd.AddCommand(updateCmd)
}

func printProfile(p sdk.UserProfile) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	fmt.Fprintf(w, "Account type:\t%s\n", p.AccountType)
	if p.AccountType == sdk.AccountTypeEmployer {
		fmt.Fprintf(w, "Company:\t%s\n", p.CompanyName)
	}
	if p.Location != "" {
		fmt.Fprintf(w, "Location:\t%s\n", p.Location)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(w, "Skills:\t%s\n", strings.Join(p.Skills, ", "))
	}
	if p.Description != "" {
		fmt.Fprintf(w, "About:\t%s\n", p.Description)
	}
	w.Flush()
}

var showUser string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a profile",
	Long:  `Shows your own profile, or another user's with --user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		if showUser != "" {
			p, err := ws.Profile(cmd.Context(), sdk.Identity(showUser))
			if err != nil {
				return fmt.Errorf("failed to fetch profile: %w", err)
			}
			printProfile(*p)
			return nil
		}

		p, err := ws.MyProfile(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}
		if p == nil {
			pterm.Warning.Println("No profile yet; run `mectl profile setup`")
			return nil
		}
		printProfile(*p)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showUser, "user", "", "Show another user's profile")
}
