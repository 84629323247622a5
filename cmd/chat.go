package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"servicebot/internal/chatclient"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatServerURL string

var chatCmd = &cobra.Command{
	Use:         "chat",
	Short:       "Chat with a running servicebot server from the terminal",
	Long:        `Opens an interactive session against the HTTP API. Type /new to start over and /quit to exit.`,
	Annotations: map[string]string{skipAppAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		serverURL := cfg.Chat.ServerURL
		if chatServerURL != "" {
			serverURL = chatServerURL
		}

		client := chatclient.NewClient(serverURL, cfg.Chat.Timeout)
		if _, err := client.Health(cmd.Context()); err != nil {
			color.Yellow("Server at %s is not answering health checks: %v", serverURL, err)
		}
		return runChat(cmd.Context(), chatclient.NewSession(client), os.Stdin, os.Stdout)
	},
}

func runChat(ctx context.Context, session *chatclient.Session, in io.Reader, out io.Writer) error {
	botColor := color.New(color.FgCyan)
	infoColor := color.New(color.Faint)

	printed := 0
	flush := func() {
		tr := session.Transcript()
		for _, e := range tr[printed:] {
			if e.Sender == chatclient.SenderBot {
				botColor.Fprintf(out, "bot> %s\n", e.Text)
			}
		}
		printed = len(tr)
	}

	flush()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit", "/exit":
			return nil
		case "/new":
			session.Reset()
			printed = 0
			flush()
			continue
		}

		hadID := session.ConversationID() != ""
		infoColor.Fprintln(out, "...")
		if !session.Submit(ctx, line) {
			if session.Complete() {
				infoColor.Fprintln(out, "This conversation is complete. Type /new to start another.")
			}
			printed = len(session.Transcript())
			continue
		}
		if !hadID && session.ConversationID() != "" {
			category, confidence := session.Category()
			infoColor.Fprintf(out, "[category: %s, confidence: %.0f%%]\n", category, confidence*100)
		}
		flush()
		if session.Complete() {
			color.New(color.FgGreen).Fprintln(out, "Request complete. Type /new to start another or /quit to exit.")
		}
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatServerURL, "server", "", "API base URL (overrides chat.server_url)")
}
