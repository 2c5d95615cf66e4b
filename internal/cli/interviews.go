package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

var interviewsCmd = &cobra.Command{
	Use:   "interviews",
	Short: "List a user's interviews and feedback scores",
	Long: `List the interviews a user has generated, with the score of the
user's latest feedback report for each.

Examples:
  nexa interviews --user <id>            # The user's own interviews
  nexa interviews --user <id> --latest   # Other users' finalized interviews`,
	RunE: runInterviews,
}

var (
	interviewsUser   string
	interviewsLatest bool
	interviewsLimit  int
)

func init() {
	rootCmd.AddCommand(interviewsCmd)
	interviewsCmd.Flags().StringVarP(&interviewsUser, "user", "u", "", "User ID (required)")
	interviewsCmd.Flags().BoolVar(&interviewsLatest, "latest", false, "Show other users' latest interviews instead")
	interviewsCmd.Flags().IntVarP(&interviewsLimit, "last", "n", 20, "Number of interviews to show with --latest")
	_ = interviewsCmd.MarkFlagRequired("user")
}

func runInterviews(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var list []*domain.Interview
	if interviewsLatest {
		list, err = app.Interviews.ListLatest(ctx, ports.ListLatestOptions{
			ExcludeUserID: interviewsUser,
			Limit:         interviewsLimit,
		})
	} else {
		list, err = app.Interviews.ListByUser(ctx, interviewsUser)
	}
	if err != nil {
		return fmt.Errorf("failed to list interviews: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No interviews found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tROLE\tTYPE\tTECHSTACK\tCREATED\tSCORE")
	for _, iv := range list {
		score := "---"
		fb, err := app.Feedback.GetByInterview(ctx, iv.ID, interviewsUser)
		if err != nil {
			return fmt.Errorf("failed to load feedback for %s: %w", iv.ID, err)
		}
		if fb != nil {
			score = fmt.Sprintf("%d/100", fb.TotalScore)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			iv.ID, iv.Role, iv.DisplayType(), strings.Join(iv.Techstack, ", "),
			iv.CreatedAt.Format("Jan 2, 2006"), score)
	}
	return w.Flush()
}
