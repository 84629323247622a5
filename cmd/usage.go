package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"servicebot/internal/clix"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// usageCmd represents the base command for classification usage and cost.
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "View classification usage and estimated LLM cost",
}

var usageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List classification log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return fmt.Errorf("invalid pagination flags: %w", err)
		}

		logs, err := appInstance.UsageService.ListUsage(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("failed to list classification logs: %w", err)
		}
		if len(logs) == 0 {
			fmt.Println("No classification logs found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Timestamp", "Method", "Provider", "Model", "Category", "Conf", "ms", "In", "Out", "Cost", "Conversation"})
		table.SetBorder(false)
		for _, l := range logs {
			table.Append([]string{
				strconv.FormatInt(l.ID, 10),
				l.CreatedAt.Format(time.DateTime),
				l.Method,
				l.Provider,
				l.ModelName,
				l.Category,
				strconv.FormatFloat(l.Confidence, 'f', 2, 64),
				strconv.FormatInt(l.DurationMs, 10),
				strconv.Itoa(l.PromptTokens),
				strconv.Itoa(l.CompletionTokens),
				fmt.Sprintf("%.6f", l.Cost),
				getStringPtrValue(l.ConversationID, "N/A"),
			})
		}
		table.Render()

		fmt.Printf("\nDisplayed %d logs.\n", len(logs))
		return nil
	},
}

var usageSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals and a per-category breakdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		sum, err := appInstance.UsageService.GetSummary(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get usage summary: %w", err)
		}

		fmt.Println("Classification Usage Summary:")
		fmt.Println("-----------------------------")
		fmt.Printf("Calls:               %d\n", sum.Calls)
		fmt.Printf("Fallback calls:      %d\n", sum.FallbackCalls)
		fmt.Printf("Total input tokens:  %d\n", sum.TotalInputTokens)
		fmt.Printf("Total output tokens: %d\n", sum.TotalOutputTokens)
		fmt.Printf("Total cost:          $%.6f\n", sum.TotalCost)
		fmt.Println()

		rows, err := appInstance.UsageService.GetBreakdown(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get usage breakdown: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Method", "Category", "Count", "Avg Confidence", "Avg ms"})
		for _, r := range rows {
			table.Append([]string{
				r.Method,
				r.Category,
				strconv.FormatInt(r.Count, 10),
				strconv.FormatFloat(r.AvgConfidence, 'f', 2, 64),
				strconv.FormatFloat(r.AvgDurationMs, 'f', 0, 64),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageListCmd)
	usageCmd.AddCommand(usageSummaryCmd)

	usageListCmd.Flags().IntP("limit", "n", 50, "Number of logs to display")
	usageListCmd.Flags().IntP("offset", "o", 0, "Number of logs to skip")
}
