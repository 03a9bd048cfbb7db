package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfalkner/partdesk/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the terminal chat",
	Long: `Start the interactive terminal chat.

Pick a support mode with the number keys or /mode, then ask about parts,
orders, or installation issues. /help lists the available commands.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr; the TUI owns stdout.
	logger := newLogger(cfg)

	client, err := newAssistant(cfg, logger)
	if err != nil {
		return err
	}

	if err := tui.Run(client, tui.WithLogger(logger), tui.WithTranscriptDir(cfg.Chat.TranscriptDir)); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}
