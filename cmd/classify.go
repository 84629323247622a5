package cmd

import (
	"fmt"
	"strings"
	"time"

	"servicebot/internal/inputprocessor"

	"github.com/spf13/cobra"
)

var (
	classifyRecord bool
	classifyFrom   string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Classify a message without opening a conversation",
	Long: `Classifies the message given as arguments, or the content named by --from:
a file path, an http(s) URL, or "-" for stdin. HTML input is reduced to text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		if classifyFrom != "" {
			res, err := inputprocessor.New(cmd.InOrStdin()).Process(cmd.Context(), classifyFrom)
			if err != nil {
				return err
			}
			text = res.Body
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to classify: pass a message or --from")
		}

		c, err := appInstance.ClassificationService.Classify(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		if classifyRecord {
			if err := appInstance.ClassificationService.Record(cmd.Context(), "", c); err != nil {
				return fmt.Errorf("failed to record classification: %w", err)
			}
		}

		fmt.Printf("Category:   %s\n", c.Category)
		fmt.Printf("Confidence: %.2f\n", c.Confidence)
		fmt.Printf("Reasoning:  %s\n", c.Reasoning)
		fmt.Printf("Method:     %s (%s %s)\n", c.Method, c.Provider, c.Model)
		fmt.Printf("Duration:   %s\n", c.Duration.Round(time.Millisecond))
		if c.PrimaryErr != nil {
			fmt.Printf("Primary:    %v\n", c.PrimaryErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyFrom, "from", "", "Read the message from a file, URL, or - for stdin")
	classifyCmd.Flags().BoolVar(&classifyRecord, "record", false, "Write the result to the classification log")
}
