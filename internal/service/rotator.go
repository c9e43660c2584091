package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/hoopscores/internal/gameday"
	"github.com/omarshaarawi/hoopscores/internal/models"
	"github.com/omarshaarawi/hoopscores/internal/repository/memory"
)

const DefaultRotationInterval = 15 * time.Second

const (
	msgLoading    = "Loading boxscore data..."
	msgNoGames    = "There were no NBA games played yesterday."
	msgDayFailed  = "Failed to load boxscores. Please try again later."
	msgGameFailed = "Failed to load boxscore for this game."
)

var (
	ErrNoGames = errors.New("no games loaded")
	ErrNoMatch = errors.New("no game matches that team")
)

type State string

const (
	StateEmpty      State = "empty"
	StateLoading    State = "loading"
	StateDisplaying State = "displaying"
	StateError      State = "error"
)

// GameFeed is the upstream source of day lists and boxscores.
type GameFeed interface {
	DayGames(ctx context.Context, dateKey string) ([]models.Game, error)
	GameDetail(ctx context.Context, gameID string) (*models.GameDetail, error)
}

// Renderer receives every view the rotator produces. Render is called with
// the rotator's lock held and must not block.
type Renderer interface {
	Render(view models.View)
}

// RotationState is a point-in-time copy of the rotator's state.
type RotationState struct {
	Games          []models.Game
	CurrentIndex   int
	Rotating       bool
	LastFetchedKey string
	State          State
	TimerActive    bool
}

type RotatorService struct {
	feed     GameFeed
	repo     *memory.Repository
	clock    clockwork.Clock
	interval time.Duration

	mu             sync.Mutex
	games          []models.Game
	index          int
	rotating       bool
	lastFetchedKey string
	lastUpdated    time.Time
	state          State
	last           models.View
	renderers      []Renderer

	// token increases with every detail request; only the newest may render.
	token uint64
	// generation increases with every Initialize; only the newest may
	// replace the game list.
	generation uint64
	// closed is set by Close; no rotation timer starts afterwards.
	closed bool

	stopRotation context.CancelFunc
	wg           sync.WaitGroup
}

func NewRotatorService(feed GameFeed, repo *memory.Repository, clock clockwork.Clock, interval time.Duration) *RotatorService {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	return &RotatorService{
		feed:     feed,
		repo:     repo,
		clock:    clock,
		interval: interval,
		rotating: true,
		state:    StateEmpty,
	}
}

func (s *RotatorService) AddRenderer(r Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderers = append(s.renderers, r)
}

// Initialize loads yesterday's completed games and shows the first one. It
// is also the reload path: any running rotation is stopped and the pause
// flag is reset.
func (s *RotatorService) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopRotationLocked()
	s.rotating = true
	s.state = StateLoading
	s.token++
	s.generation++
	generation := s.generation
	s.renderLocked(s.statusViewLocked(models.ViewLoading, msgLoading))
	s.mu.Unlock()

	dateKey := gameday.YesterdayKey(s.clock.Now())
	games, err := s.feed.DayGames(ctx, dateKey)

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		slog.Debug("Discarding superseded day list", "date", dateKey)
		return
	}

	if err != nil {
		slog.Error("Error loading games", "date", dateKey, "error", err)
		s.state = StateError
		s.renderLocked(s.statusViewLocked(models.ViewError, msgDayFailed))
		s.mu.Unlock()
		return
	}

	s.games = CompletedGames(games)
	s.index = 0
	s.lastFetchedKey = dateKey
	s.lastUpdated = s.clock.Now()
	slog.Info("Loaded games", "date", dateKey, "total", len(games), "completed", len(s.games))

	if len(s.games) == 0 {
		s.state = StateEmpty
		s.renderLocked(s.statusViewLocked(models.ViewEmpty, msgNoGames))
		s.mu.Unlock()
		return
	}

	token, game := s.beginLoadLocked()
	s.mu.Unlock()

	s.loadDetail(ctx, token, game)

	s.mu.Lock()
	if generation == s.generation && len(s.games) > 0 {
		s.startRotationLocked()
	}
	s.mu.Unlock()
}

// Next advances to the following game, wrapping past the end.
func (s *RotatorService) Next(ctx context.Context) {
	s.move(ctx, 1)
}

// Previous steps back one game, wrapping from the first to the last.
func (s *RotatorService) Previous(ctx context.Context) {
	s.move(ctx, -1)
}

func (s *RotatorService) move(ctx context.Context, step int) {
	s.mu.Lock()
	token, game, ok := s.stepLocked(step)
	s.mu.Unlock()

	if ok {
		s.loadDetail(ctx, token, game)
	}
}

func (s *RotatorService) stepLocked(step int) (uint64, models.Game, bool) {
	n := len(s.games)
	if n == 0 {
		return 0, models.Game{}, false
	}
	s.index = ((s.index+step)%n + n) % n
	token, game := s.beginLoadLocked()
	return token, game, true
}

// JumpTo moves to the game whose team best matches query.
func (s *RotatorService) JumpTo(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrNoMatch
	}

	s.mu.Lock()
	if len(s.games) == 0 {
		s.mu.Unlock()
		return ErrNoGames
	}

	idx, ok := matchGame(s.games, query)
	if !ok {
		s.mu.Unlock()
		return ErrNoMatch
	}
	s.index = idx
	token, game := s.beginLoadLocked()
	s.mu.Unlock()

	s.loadDetail(ctx, token, game)
	return nil
}

// ToggleRotation flips pause state and returns whether rotation is now on.
func (s *RotatorService) ToggleRotation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rotating = !s.rotating
	view := s.last
	view.Paused = !s.rotating
	s.renderLocked(view)

	slog.Info("Rotation toggled", "rotating", s.rotating)
	return s.rotating
}

func (s *RotatorService) Current() models.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *RotatorService) LastFetchedKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetchedKey
}

func (s *RotatorService) Snapshot() RotationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := make([]models.Game, len(s.games))
	copy(games, s.games)
	return RotationState{
		Games:          games,
		CurrentIndex:   s.index,
		Rotating:       s.rotating,
		LastFetchedKey: s.lastFetchedKey,
		State:          s.state,
		TimerActive:    s.stopRotation != nil,
	}
}

// Close stops the rotation timer and waits for its goroutine to exit.
func (s *RotatorService) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopRotationLocked()
	s.token++
	s.generation++
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *RotatorService) beginLoadLocked() (uint64, models.Game) {
	s.token++
	s.state = StateLoading
	s.renderLocked(s.statusViewLocked(models.ViewLoading, msgLoading))
	return s.token, s.games[s.index]
}

func (s *RotatorService) loadDetail(ctx context.Context, token uint64, game models.Game) {
	detail, err := s.feed.GameDetail(ctx, game.ID)

	var view *models.GameView
	if err == nil {
		view, err = BuildGameView(game, detail)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		slog.Debug("Discarding stale boxscore", "game", game.ID)
		return
	}

	if err != nil {
		slog.Error("Error displaying game", "game", game.ID, "error", err)
		s.state = StateError
		s.renderLocked(s.statusViewLocked(models.ViewError, msgGameFailed))
		return
	}

	s.state = StateDisplaying
	v := s.statusViewLocked(models.ViewGame, "")
	v.Game = view
	s.renderLocked(v)
}

func (s *RotatorService) startRotationLocked() {
	s.stopRotationLocked()
	if s.closed {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopRotation = cancel
	ticker := s.clock.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.tick(ctx)
			}
		}
	}()
}

func (s *RotatorService) stopRotationLocked() {
	if s.stopRotation != nil {
		s.stopRotation()
		s.stopRotation = nil
	}
}

// tick advances while rotating. The rotation context is cancelled under
// s.mu, so a tick that lost the race with a reload or Close sees it here.
func (s *RotatorService) tick(ctx context.Context) {
	s.mu.Lock()
	if ctx.Err() != nil || !s.rotating {
		s.mu.Unlock()
		return
	}
	token, game, ok := s.stepLocked(1)
	s.mu.Unlock()

	if ok {
		s.loadDetail(ctx, token, game)
	}
}

func (s *RotatorService) statusViewLocked(kind models.ViewKind, message string) models.View {
	v := models.View{
		Kind:      kind,
		Message:   message,
		Total:     len(s.games),
		Paused:    !s.rotating,
		DateKey:   s.lastFetchedKey,
		UpdatedAt: s.lastUpdated,
	}
	if len(s.games) > 0 {
		v.Position = s.index + 1
	}
	return v
}

func (s *RotatorService) renderLocked(view models.View) {
	s.last = view
	s.repo.SaveView(view)
	for _, r := range s.renderers {
		r.Render(view)
	}
}

// matchGame ranks every team name and abbreviation against query and
// returns the index of the game holding the closest one.
func matchGame(games []models.Game, query string) (int, bool) {
	var targets []string
	var owners []int
	for i, g := range games {
		for _, name := range []string{g.Away.DisplayName, g.Home.DisplayName, g.Away.Abbreviation, g.Home.Abbreviation} {
			if name == "" {
				continue
			}
			targets = append(targets, name)
			owners = append(owners, i)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	if len(ranks) == 0 {
		return 0, false
	}
	sort.Stable(ranks)
	return owners[ranks[0].OriginalIndex], true
}
