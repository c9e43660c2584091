package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/omarshaarawi/hoopscores/internal/models"
)

func boardView() models.View {
	return models.View{
		Kind:     models.ViewGame,
		Position: 2,
		Total:    3,
		Game: &models.GameView{
			ID:     "401",
			Title:  "New York Knicks @ Boston Celtics",
			Venue:  "TD Garden",
			Date:   "Friday, March 1, 2024",
			Status: "Final",
			Away:   models.TeamLine{Abbreviation: "NY", Score: "104"},
			Home:   models.TeamLine{Abbreviation: "BOS", Score: "112"},
			AwayStats: models.TeamStatsView{
				TeamName: "New York Knicks",
				Message:  "No player data available",
			},
			HomeStats: models.TeamStatsView{
				TeamName: "Boston Celtics",
				Headers:  []string{"MIN", "PTS"},
				Rows:     []models.PlayerRow{{Name: "Jayson Tatum", Stats: []string{"36", "30"}}},
			},
		},
	}
}

func TestFormatView(t *testing.T) {
	t.Run("game", func(t *testing.T) {
		text := FormatView(boardView())
		for _, want := range []string{
			"New York Knicks @ Boston Celtics",
			"TD Garden • Friday, March 1, 2024",
			"NY 104 - 112 BOS",
			"No player data available",
			"Jayson Tatum  36  30",
			"Game 2 of 3",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("expected %q in:\n%s", want, text)
			}
		}
	})

	t.Run("paused", func(t *testing.T) {
		view := boardView()
		view.Paused = true
		if !strings.Contains(FormatView(view), "Game 2 of 3 (paused)") {
			t.Error("expected paused marker")
		}
	})

	t.Run("empty", func(t *testing.T) {
		text := FormatView(models.View{Kind: models.ViewEmpty, Message: "There were no NBA games played yesterday."})
		if !strings.Contains(text, "No Games Yesterday") || !strings.Contains(text, "no NBA games") {
			t.Errorf("unexpected empty text %q", text)
		}
	})

	t.Run("error", func(t *testing.T) {
		text := FormatView(models.View{Kind: models.ViewError, Message: "boom"})
		if !strings.Contains(text, "Unable to Load Data") {
			t.Errorf("unexpected error text %q", text)
		}
	})
}

type recordingSender struct {
	mu    sync.Mutex
	calls []int
	texts []string
	fail  bool
}

func (r *recordingSender) send(messageID int, text string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, messageID)
	r.texts = append(r.texts, text)
	if r.fail {
		return 0, errors.New("telegram down")
	}
	if messageID == 0 {
		return 7, nil
	}
	return messageID, nil
}

func (r *recordingSender) snapshot() ([]int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...), append([]string(nil), r.texts...)
}

func TestBoardOfferKeepsLatest(t *testing.T) {
	b := NewBoard()

	b.Offer(models.View{Kind: models.ViewEmpty, Message: "first"})
	b.Offer(models.View{Kind: models.ViewLoading, Message: "Loading..."})
	b.Offer(models.View{Kind: models.ViewError, Message: "second"})

	if len(b.views) != 1 {
		t.Fatalf("expected one queued view, got %d", len(b.views))
	}
	if got := <-b.views; got.Message != "second" {
		t.Errorf("expected latest view, got %q", got.Message)
	}
}

func TestBoardEditsInPlace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBoard()
	sender := &recordingSender{}
	go b.Run(ctx, sender.send)

	b.Offer(boardView())
	waitForCalls(t, sender, 1)

	b.Offer(boardView())
	view := boardView()
	view.Position = 3
	b.Offer(view)
	waitForCalls(t, sender, 2)

	calls, texts := sender.snapshot()
	if calls[0] != 0 || calls[1] != 7 {
		t.Errorf("expected a post then an edit of message 7, got %v", calls)
	}
	if !strings.Contains(texts[1], "Game 3 of 3") {
		t.Errorf("expected updated board, got %q", texts[1])
	}
}

func TestBoardRepostsAfterFailure(t *testing.T) {
	b := NewBoard()
	sender := &recordingSender{}

	b.publish(boardView(), sender.send)
	sender.fail = true
	view := boardView()
	view.Paused = true
	b.publish(view, sender.send)
	if b.messageID != 0 {
		t.Errorf("expected board ID reset after failure, got %d", b.messageID)
	}

	sender.fail = false
	b.publish(view, sender.send)
	calls, _ := sender.snapshot()
	if calls[2] != 0 {
		t.Errorf("expected a fresh post after failure, got %v", calls)
	}
}

func waitForCalls(t *testing.T, r *recordingSender, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls, _ := r.snapshot(); len(calls) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sends", n)
}
