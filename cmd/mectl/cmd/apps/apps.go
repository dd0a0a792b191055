package apps

import (
	"github.com/spf13/cobra"
)

// AppsCmd is the parent command for application operations
var AppsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage your job applications",
	Long:  `Commands for candidates to apply to jobs and track their applications.`,
}

func init() {
	AppsCmd.AddCommand(listCmd)
	AppsCmd.AddCommand(applyCmd)
}
