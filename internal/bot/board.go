package bot

import (
	"context"
	"log/slog"

	"github.com/omarshaarawi/hoopscores/internal/models"
)

// SendFunc publishes board text. It receives the current board message ID
// (zero if none) and returns the ID now holding the board.
type SendFunc func(messageID int, text string) (int, error)

// Board coalesces rendered views so only the latest one reaches the chat.
type Board struct {
	views     chan models.View
	messageID int
	lastText  string
}

func NewBoard() *Board {
	return &Board{views: make(chan models.View, 1)}
}

// Offer queues a view without blocking, replacing any view not yet sent.
// Loading placeholders are skipped since the chat only shows settled views.
func (b *Board) Offer(view models.View) {
	if view.Kind == models.ViewLoading {
		return
	}
	for {
		select {
		case b.views <- view:
			return
		default:
		}
		select {
		case <-b.views:
		default:
		}
	}
}

func (b *Board) Run(ctx context.Context, send SendFunc) {
	for {
		select {
		case view := <-b.views:
			b.publish(view, send)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Board) publish(view models.View, send SendFunc) {
	text := FormatView(view)
	if text == "" || text == b.lastText {
		return
	}

	id, err := send(b.messageID, text)
	if err != nil {
		slog.Error("Error updating board", "error", err)
		b.messageID = 0
		return
	}
	b.messageID = id
	b.lastText = text
}
