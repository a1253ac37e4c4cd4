package cmd

import (
	"strings"

	"maintplane/pkg/api"

	"github.com/spf13/cobra"
)

var (
	approveStep    int
	approveComment string
	rejectStep     int
	rejectReason   string
)

var approveCmd = &cobra.Command{
	Use:   "approve [workflow_id]",
	Short: "Approve the active step of a workflow",
	Long: `Approve the active approval step. You must hold the job role of the step.
Pass --step to pin the step you mean; repeating an approval of that step is
reported as already applied instead of approving the next one.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		res, err := client.Approve(args[0], api.ApproveRequest{StepNo: approveStep, Comment: approveComment})
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		printDecision(cmd, "Approved", res)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [workflow_id]",
	Short: "Reject the active step, cancelling the workflow",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if strings.TrimSpace(rejectReason) == "" {
			cmd.Println("A reason is required. Pass it with --reason")
			return
		}

		client := newClient(cmd)
		if client == nil {
			return
		}

		res, err := client.Reject(args[0], api.RejectRequest{StepNo: rejectStep, Reason: rejectReason})
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		printDecision(cmd, "Rejected", res)
	},
}

func printDecision(cmd *cobra.Command, verb string, res *api.DecisionResponse) {
	if res.Replayed {
		cmd.Printf("%s◯%s Already applied, nothing changed.\n", colorCyan, colorReset)
	} else {
		cmd.Printf("%s✓%s %s.\n", colorGreen, colorReset, verb)
	}
	printWorkflow(cmd, &res.Workflow)
}

func init() {
	approveCmd.Flags().IntVar(&approveStep, "step", 0, "Sequence number of the step being approved (default: the active step)")
	approveCmd.Flags().StringVar(&approveComment, "comment", "", "Comment recorded with the approval")
	rootCmd.AddCommand(approveCmd)

	rejectCmd.Flags().IntVar(&rejectStep, "step", 0, "Sequence number of the step being rejected (default: the active step)")
	rejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Why the workflow is rejected (required)")
	rootCmd.AddCommand(rejectCmd)
}
