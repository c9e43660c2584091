package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/hoopscores/internal/models"
	"github.com/omarshaarawi/hoopscores/internal/service"
)

// Rotator is what the chat commands drive.
type Rotator interface {
	Initialize(ctx context.Context)
	Next(ctx context.Context)
	Previous(ctx context.Context)
	ToggleRotation() bool
	JumpTo(ctx context.Context, query string) error
	Current() models.View
}

type Handler struct {
	rotator Rotator
}

func NewHandler(rotator Rotator) *Handler {
	return &Handler{rotator: rotator}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := update.Message.CommandArguments()
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to HoopScores! Use /help to see available commands."
	case "help":
		msg.Text = "Available commands:\n/now - Show the current boxscore\n/next - Next game\n/prev - Previous game\n/pause - Pause or resume rotation\n/game <team> - Jump to a team's game\n/refresh - Reload yesterday's games"
	case "now":
		msg.Text = FormatView(h.rotator.Current())
	case "next":
		h.rotator.Next(ctx)
		msg.Text = FormatView(h.rotator.Current())
	case "prev", "previous":
		h.rotator.Previous(ctx)
		msg.Text = FormatView(h.rotator.Current())
	case "pause", "resume":
		h.handleToggle(&msg)
	case "game":
		h.handleGame(ctx, &msg, args)
	case "refresh":
		h.rotator.Initialize(ctx)
		msg.Text = FormatView(h.rotator.Current())
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleToggle(msg *tgbotapi.MessageConfig) {
	if h.rotator.ToggleRotation() {
		msg.Text = "▶️ Rotation resumed"
	} else {
		msg.Text = "⏸ Rotation paused"
	}
}

func (h *Handler) handleGame(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a team name. Usage: /game <team name>"
		return
	}

	err := h.rotator.JumpTo(ctx, args)
	switch {
	case errors.Is(err, service.ErrNoGames):
		msg.Text = "No games are loaded right now."
	case errors.Is(err, service.ErrNoMatch):
		msg.Text = fmt.Sprintf("🔍 No game found for '%s'.", args)
	case err != nil:
		msg.Text = fmt.Sprintf("Error finding game: %v", err)
	default:
		msg.Text = FormatView(h.rotator.Current())
	}
}
