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

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Inspect stored conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return fmt.Errorf("invalid pagination flags: %w", err)
		}
		status, err := clix.ParseStatus(cmd.Flags())
		if err != nil {
			return err
		}

		convs, err := appInstance.ConversationService.ListConversations(cmd.Context(), string(status), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}
		if len(convs) == 0 {
			fmt.Println("No conversations found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Status", "Category", "Confidence", "Asked", "Routed To", "Created At"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(true)

		for _, c := range convs {
			confidence := "N/A"
			if c.Confidence != nil {
				confidence = strconv.FormatFloat(*c.Confidence, 'f', 2, 64)
			}
			table.Append([]string{
				c.ID,
				string(c.Status),
				getStringPtrValue(c.Category, "N/A"),
				confidence,
				strconv.Itoa(c.QuestionIndex),
				getStringPtrValue(c.RoutedTo, ""),
				c.CreatedAt.Format(time.RFC3339),
			})
		}
		table.Render()
		return nil
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a conversation and its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		detail, err := appInstance.ConversationService.GetConversation(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get conversation %s: %w", args[0], err)
		}

		c := detail.Conversation
		fmt.Printf("Conversation: %s\n", c.ID)
		fmt.Printf("Status:       %s\n", c.Status)
		fmt.Printf("Category:     %s\n", getStringPtrValue(c.Category, "N/A"))
		if c.Confidence != nil {
			fmt.Printf("Confidence:   %.2f\n", *c.Confidence)
		}
		if c.RoutedTo != nil && c.RoutedAt != nil {
			fmt.Printf("Routed to:    %s at %s\n", *c.RoutedTo, c.RoutedAt.Format(time.RFC3339))
		}
		fmt.Println()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Time", "Sender", "Message"})
		table.SetAutoWrapText(true)
		table.SetBorder(false)
		for _, m := range detail.Messages {
			table.Append([]string{m.CreatedAt.Format("15:04:05"), string(m.Sender), m.Content})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)

	conversationsListCmd.Flags().IntP("limit", "n", 20, "Maximum number of conversations to list")
	conversationsListCmd.Flags().IntP("offset", "o", 0, "Number of conversations to skip")
	conversationsListCmd.Flags().StringP("status", "s", "", "Filter by status (active, completed)")
}

// getStringPtrValue returns *ptr, or def when ptr is nil.
func getStringPtrValue(ptr *string, def string) string {
	if ptr != nil {
		return *ptr
	}
	return def
}
