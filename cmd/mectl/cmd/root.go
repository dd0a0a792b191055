package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/cmd/apps"
	authcmd "github.com/caffeinepub/m-employed/cmd/mectl/cmd/auth"
	"github.com/caffeinepub/m-employed/cmd/mectl/cmd/jobs"
	"github.com/caffeinepub/m-employed/cmd/mectl/cmd/msg"
	"github.com/caffeinepub/m-employed/cmd/mectl/cmd/profile"
	"github.com/caffeinepub/m-employed/cmd/mectl/internal/client"
	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
)

var (
	serverURL      string
	nonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "mectl",
	Short: "m-employed CLI - job marketplace client",
	Long: `mectl is the command-line interface for m-employed, a two-sided job
marketplace. Employers post and manage jobs; candidates browse, apply, and
message employers about their applications.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if os.Getenv("ME_NON_INTERACTIVE") == "1" {
			nonInteractive = true
		}

		cfg := &config.GlobalConfig{
			ServerURL:      serverURL,
			NonInteractive: nonInteractive,
			Provider:       client.NewProvider(serverURL),
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "m-employed API server URL")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via ME_NON_INTERACTIVE=1)")
	rootCmd.AddCommand(authcmd.AuthCmd)
	rootCmd.AddCommand(jobs.JobsCmd)
	rootCmd.AddCommand(apps.AppsCmd)
	rootCmd.AddCommand(msg.MsgCmd)
	rootCmd.AddCommand(profile.ProfileCmd)
	rootCmd.AddCommand(statsCmd)
}
