package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/omarshaarawi/hoopscores/internal/models"
	"github.com/omarshaarawi/hoopscores/internal/repository/memory"
	"github.com/omarshaarawi/hoopscores/internal/service"
)

// mockRotator counts navigation calls.
type mockRotator struct {
	mu       sync.Mutex
	next     int
	previous int
	toggles  int
	jumps    []string
	jumpErr  error
}

func (m *mockRotator) Next(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
}

func (m *mockRotator) Previous(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previous++
}

func (m *mockRotator) ToggleRotation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles++
	return m.toggles%2 == 0
}

func (m *mockRotator) JumpTo(_ context.Context, team string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jumps = append(m.jumps, team)
	return m.jumpErr
}

func (m *mockRotator) counts() (int, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next, m.previous, m.toggles
}

type mockVisibility struct {
	mu     sync.Mutex
	checks int
}

func (m *mockVisibility) OnVisible(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
	return true
}

func (m *mockVisibility) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}

func gameView() models.View {
	return models.View{
		Kind:     models.ViewGame,
		Position: 1,
		Total:    2,
		Game: &models.GameView{
			ID:    "1",
			Title: "New York Knicks @ Boston Celtics",
			Venue: "TD Garden",
			Away:  models.TeamLine{Abbreviation: "NY", Score: "104"},
			Home:  models.TeamLine{Abbreviation: "BOS", Score: "112"},
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

type testEnv struct {
	srv        *httptest.Server
	rotator    *mockRotator
	visibility *mockVisibility
	repo       *memory.Repository
	hub        *Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &testEnv{
		rotator:    &mockRotator{},
		visibility: &mockVisibility{},
		repo:       memory.NewRepository(),
		hub:        NewHub(),
	}
	s := New(ctx, env.rotator, env.visibility, env.repo, env.hub, []string{"*"})
	env.srv = httptest.NewServer(s.Routes())
	t.Cleanup(env.srv.Close)
	return env
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestViewEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/view")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var view models.View
	json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()
	if view.Kind != models.ViewLoading {
		t.Errorf("expected loading view before first render, got %s", view.Kind)
	}

	env.repo.SaveView(gameView())

	resp, err = http.Get(env.srv.URL + "/api/view")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	json.NewDecoder(resp.Body).Decode(&view)
	if view.Kind != models.ViewGame || view.Game.ID != "1" {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestNavigationEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/next", "/api/next", "/api/previous", "/api/toggle"} {
		resp, err := http.Post(env.srv.URL+path, "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("POST %s: status %d", path, resp.StatusCode)
		}
	}

	next, previous, toggles := env.rotator.counts()
	if next != 2 || previous != 1 || toggles != 1 {
		t.Errorf("unexpected counts next=%d previous=%d toggles=%d", next, previous, toggles)
	}

	resp, err := http.Get(env.srv.URL + "/api/next")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET /api/next, got %d", resp.StatusCode)
	}
}

func TestJumpEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.srv.URL+"/api/jump", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without team, got %d", resp.StatusCode)
	}

	resp, err = http.Post(env.srv.URL+"/api/jump?team=celtics", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || env.rotator.jumps[0] != "celtics" {
		t.Errorf("unexpected jump result %d %v", resp.StatusCode, env.rotator.jumps)
	}

	env.rotator.jumpErr = service.ErrNoMatch
	resp, err = http.Post(env.srv.URL+"/api/jump?team=raptors", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown team, got %d", resp.StatusCode)
	}
}

func TestVisibleEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.srv.URL+"/api/visible", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]bool
	json.NewDecoder(resp.Body).Decode(&body)
	if !body["reloaded"] || env.visibility.count() != 1 {
		t.Errorf("expected visibility check, got %v", body)
	}
}

func TestPageRendersBoard(t *testing.T) {
	env := newTestEnv(t)
	env.repo.SaveView(gameView())

	resp, err := http.Get(env.srv.URL + "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading page: %v", err)
	}
	page := string(body)

	for _, want := range []string{"New York Knicks @ Boston Celtics", "Jayson Tatum", "No player data available", "/ws"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestWebSocketPushAndDispatch(t *testing.T) {
	env := newTestEnv(t)
	env.repo.SaveView(models.View{Kind: models.ViewEmpty, Message: "There were no NBA games played yesterday."})

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first ServerMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("reading initial view: %v", err)
	}
	if first.View.Kind != models.ViewEmpty || !strings.Contains(string(first.HTML), "No Games Yesterday") {
		t.Errorf("unexpected initial message %+v", first)
	}

	waitFor(t, "client registration", func() bool { return env.hub.ClientCount() == 1 })
	env.hub.Render(gameView())

	var pushed ServerMessage
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("reading pushed view: %v", err)
	}
	if pushed.View.Game == nil || pushed.View.Game.ID != "1" {
		t.Errorf("unexpected pushed view %+v", pushed.View)
	}

	hidden, visible := false, true
	for _, msg := range []ClientMessage{
		{Type: "next"},
		{Type: "previous"},
		{Type: "toggle"},
		{Type: "visibility", Visible: &visible},
		{Type: "visibility", Visible: &hidden},
		{Type: "visibility", Visible: &visible},
	} {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	waitFor(t, "dispatched messages", func() bool {
		next, previous, toggles := env.rotator.counts()
		return next == 1 && previous == 1 && toggles == 1 && env.visibility.count() == 1
	})
}

func TestClientVisibilityEdges(t *testing.T) {
	c := NewClient("c", nil, NewHub(), nil)

	if c.BecameVisible(true) {
		t.Error("visible while already visible is not an edge")
	}
	if c.BecameVisible(false) {
		t.Error("hiding is not a visible edge")
	}
	if !c.BecameVisible(true) {
		t.Error("expected hidden to visible edge")
	}
}

func TestRegisterSeedsBeforeConcurrentRender(t *testing.T) {
	hub := NewHub()
	c := NewClient("c", nil, hub, nil)

	rendered := make(chan struct{})
	hub.Register(c, func() models.View {
		go func() {
			hub.Render(gameView())
			close(rendered)
		}()
		return models.View{Kind: models.ViewLoading, Message: "Loading boxscore data..."}
	})
	<-rendered

	first := <-c.send
	if first.View.Kind != models.ViewLoading {
		t.Errorf("expected seeded view first, got %s", first.View.Kind)
	}
	select {
	case second := <-c.send:
		if second.View.Game == nil || second.View.Game.ID != "1" {
			t.Errorf("unexpected render %+v", second.View)
		}
	default:
		t.Error("render during registration never reached the client")
	}
}

func TestPageToggleLabelFollowsPause(t *testing.T) {
	env := newTestEnv(t)

	for _, tt := range []struct {
		paused bool
		want   string
	}{
		{paused: false, want: `<button id="toggle-rotation">Pause</button>`},
		{paused: true, want: `<button id="toggle-rotation">Resume</button>`},
	} {
		view := gameView()
		view.Paused = tt.paused
		env.repo.SaveView(view)

		resp, err := http.Get(env.srv.URL + "/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("reading page: %v", err)
		}

		page := string(body)
		if !strings.Contains(page, tt.want) {
			t.Errorf("paused=%v: page missing %q", tt.paused, tt.want)
		}
		if !strings.Contains(page, "m.view.paused ? 'Resume' : 'Pause'") {
			t.Error("page does not update the toggle label from pushed views")
		}
	}
}
