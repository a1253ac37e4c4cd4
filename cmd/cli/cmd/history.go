package cmd

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [workflow_id]",
	Short: "Show the audit trail of a workflow or direct schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		events, err := client.History(args[0])
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		if len(events) == 0 {
			cmd.Println("No events recorded.")
			return
		}

		for _, ev := range events {
			line := ev.CreatedAt.Format("2006-01-02 15:04:05") + "  " + ev.Action
			if ev.SequenceNo != nil {
				cmd.Printf("%s (step %d)", line, *ev.SequenceNo)
			} else {
				cmd.Print(line)
			}
			if ev.ActorID != nil {
				cmd.Printf(" %sby %s%s", colorDim, *ev.ActorID, colorReset)
			}
			if ev.Note != nil && *ev.Note != "" {
				cmd.Printf(" %q", *ev.Note)
			}
			cmd.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
