package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL        string
	focusMode        string
	optimizationMode string
	chatID           string
	fileIDs          []string
	chatProvider     string
	chatModel        string

	rootCmd = &cobra.Command{
		Use:   "ask",
		Short: "Terminal client for the ai-search backend",
	}

	questionCmd = &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a question and stream the cited answer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}

	chatsCmd = &cobra.Command{
		Use:   "chats",
		Short: "List stored conversations",
		RunE:  runChats,
	}

	discoverCmd = &cobra.Command{
		Use:   "discover",
		Short: "Show the discover feed",
		RunE:  runDiscover,
	}

	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "List the chat and embedding models the server exposes",
		RunE:  runModels,
	}
)

func init() {
	defaultServer := os.Getenv("AI_SEARCH_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:3001"
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "backend base URL")

	questionCmd.Flags().StringVarP(&focusMode, "focus", "f", "webSearch", "focus mode")
	questionCmd.Flags().StringVarP(&optimizationMode, "mode", "m", "balanced", "optimization mode (speed, balanced, quality)")
	questionCmd.Flags().StringVarP(&chatID, "chat", "c", "", "conversation id to continue (new one when empty)")
	questionCmd.Flags().StringSliceVar(&fileIDs, "file", nil, "uploaded file id to search (repeatable)")
	questionCmd.Flags().StringVar(&chatProvider, "provider", "", "chat model provider")
	questionCmd.Flags().StringVar(&chatModel, "model", "", "chat model name")

	rootCmd.AddCommand(questionCmd, chatsCmd, discoverCmd, modelsCmd)
}
