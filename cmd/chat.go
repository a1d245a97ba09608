package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wayfarerlabs/tripmind/agent/sanitize"
)

var chatUserID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatUserID, "user", "local", "user id for this session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	userID, err := sanitize.UserID(chatUserID)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	conv := a.factory(userID)

	fmt.Printf("Chatting as %s. Type 'quit' to exit, 'clear' to reset the session.\n", userID)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "clear":
			conv.Clear()
			fmt.Println("Session cleared.")
			continue
		}

		reply, err := conv.Chat(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
	return scanner.Err()
}
