package models

import "time"

const StatePost = "post"

// Game is a day-list entry reduced to the fields the rotator uses.
type Game struct {
	ID           string
	State        string
	StatusDetail string
	Date         time.Time
	Venue        string
	Home         TeamLine
	Away         TeamLine
}

func (g Game) Completed() bool {
	return g.State == StatePost
}

type TeamLine struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Logo         string `json:"logo,omitempty"`
	Score        string `json:"score"`
}

// GameDetail carries the per-team statistics blocks of one game keyed by
// team id.
type GameDetail struct {
	GameID string
	Teams  map[string]StatTable
}

// StatTable is a header row plus one row per athlete. Each row's Stats are
// aligned positionally with Headers.
type StatTable struct {
	Headers []string
	Rows    []PlayerRow
}

type PlayerRow struct {
	Name  string   `json:"name"`
	Stats []string `json:"stats"`
}

type ViewKind string

const (
	ViewLoading ViewKind = "loading"
	ViewGame    ViewKind = "game"
	ViewEmpty   ViewKind = "empty"
	ViewError   ViewKind = "error"
)

// View is everything a client needs to draw the board.
type View struct {
	Kind      ViewKind  `json:"kind"`
	Message   string    `json:"message,omitempty"`
	Position  int       `json:"position"`
	Total     int       `json:"total"`
	Paused    bool      `json:"paused"`
	DateKey   string    `json:"dateKey,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Game      *GameView `json:"game,omitempty"`
}

type GameView struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Venue     string        `json:"venue"`
	Date      string        `json:"date"`
	Status    string        `json:"status"`
	Away      TeamLine      `json:"away"`
	Home      TeamLine      `json:"home"`
	AwayStats TeamStatsView `json:"awayStats"`
	HomeStats TeamStatsView `json:"homeStats"`
}

type TeamStatsView struct {
	TeamName string      `json:"teamName"`
	Headers  []string    `json:"headers,omitempty"`
	Rows     []PlayerRow `json:"rows,omitempty"`
	Message  string      `json:"message,omitempty"`
}
