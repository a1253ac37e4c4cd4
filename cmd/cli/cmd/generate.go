package cmd

import (
	"sort"

	"maintplane/pkg/api"

	"github.com/spf13/cobra"
)

var generateAsOf string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run eligibility and open workflows for every due asset",
	Long: `Evaluate every maintained asset and open a maintenance workflow (or a direct
schedule when the asset type has no approval chain) for each asset whose
maintenance window has opened. Requires an administrator key. Safe to repeat:
assets that already hold an open cycle are skipped.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		report, err := client.Generate(generateAsOf)
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		printRunReport(cmd, report)
	},
}

func printRunReport(cmd *cobra.Command, report *api.RunReportResponse) {
	cmd.Printf("%sMaintenance run %s%s (as of %s)\n", colorBold, report.RunID, colorReset, report.AsOf)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sWorkflows created:%s        %d\n", colorDim, colorReset, report.WorkflowsCreated)
	cmd.Printf("%sDirect schedules created:%s %d\n", colorDim, colorReset, report.DirectSchedulesCreated)
	cmd.Printf("%sSkipped:%s                  %d\n", colorDim, colorReset, report.Skipped)
	cmd.Printf("%sAsset types skipped:%s      %d\n", colorDim, colorReset, report.AssetTypesSkipped)

	reasons := make([]string, 0, len(report.SkipReasons))
	for reason := range report.SkipReasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		cmd.Printf("  %s: %d\n", reason, report.SkipReasons[reason])
	}

	if report.Failed == 0 {
		cmd.Printf("%sFailed:%s                   %s0%s\n", colorDim, colorReset, colorGreen, colorReset)
		return
	}
	cmd.Printf("%sFailed:%s                   %s%d%s\n", colorDim, colorReset, colorRed, report.Failed, colorReset)
	for _, f := range report.Failures {
		cmd.Printf("  %s✗%s asset type %s asset %s %s: %s\n", colorRed, colorReset, f.AssetTypeID, deref(f.AssetID), f.MaintenanceTypeID, f.Error)
	}
}

func init() {
	generateCmd.Flags().StringVar(&generateAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(generateCmd)
}
