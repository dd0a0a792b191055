package jobs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

// JobsCmd is the parent command for job operations
var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Browse and manage job postings",
	Long: `Commands for browsing published jobs, and for employers to create,
update, publish, and delete their own postings.`,
}

func init() {
	JobsCmd.AddCommand(listCmd)
	JobsCmd.AddCommand(mineCmd)
	JobsCmd.AddCommand(searchCmd)
	JobsCmd.AddCommand(getCmd)
	JobsCmd.AddCommand(createCmd)
	JobsCmd.AddCommand(updateCmd)
	JobsCmd.AddCommand(publishCmd)
	JobsCmd.AddCommand(unpublishCmd)
	JobsCmd.AddCommand(deleteCmd)
	JobsCmd.AddCommand(applicationsCmd)
}

func parseJobID(arg string) (sdk.JobID, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid job id %q", arg)
	}
	return sdk.JobID(id), nil
}

func printJobTable(jobs []sdk.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tLOCATION\tTYPE\tPUBLISHED")
	for _, job := range jobs {
		published := "no"
		if job.Published {
			published = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", job.ID, job.Title, job.Location, job.EmploymentType, published)
	}
	w.Flush()
}

func printJobDetail(job sdk.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", job.ID)
	fmt.Fprintf(w, "Title:\t%s\n", job.Title)
	fmt.Fprintf(w, "Location:\t%s\n", job.Location)
	fmt.Fprintf(w, "Type:\t%s\n", job.EmploymentType)
	fmt.Fprintf(w, "Employer:\t%s\n", job.Employer)
	fmt.Fprintf(w, "Published:\t%t\n", job.Published)
	if len(job.Skills) > 0 {
		fmt.Fprintf(w, "Skills:\t%s\n", strings.Join(job.Skills, ", "))
	}
	fmt.Fprintf(w, "Description:\t%s\n", job.Description)
	w.Flush()
}
