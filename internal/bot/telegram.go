package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/hoopscores/internal/models"
)

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
	board   *Board
}

func NewTelegramBot(token string, chatID int64, rotator Rotator) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &TelegramBot{
		bot:     bot,
		handler: NewHandler(rotator),
		chatID:  chatID,
		board:   NewBoard(),
	}, nil
}

// Render implements service.Renderer by queueing the view for the board.
func (t *TelegramBot) Render(view models.View) {
	t.board.Offer(view)
}

func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	go t.board.Run(ctx, t.updateBoard)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			if update.Message.IsCommand() {
				msg := t.handler.HandleCommand(ctx, update)
				if _, err := t.bot.Send(msg); err != nil {
					slog.Error("Error sending message", "error", err)
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// updateBoard edits the board message in place, posting a new one the
// first time or after an edit fails.
func (t *TelegramBot) updateBoard(messageID int, text string) (int, error) {
	if t.chatID == 0 {
		return 0, fmt.Errorf("chat ID not set")
	}

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(t.chatID, messageID, text)
		edit.ParseMode = "Markdown"
		_, err := t.bot.Send(edit)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			return messageID, nil
		}
		slog.Warn("Error editing board, posting a new one", "error", err)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := t.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}
