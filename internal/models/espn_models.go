package models

type ScoreboardResponse struct {
	Events []Event `json:"events"`
}

type Event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Name         string        `json:"name"`
	Status       EventStatus   `json:"status"`
	Competitions []Competition `json:"competitions"`
}

type EventStatus struct {
	Type StatusType `json:"type"`
}

type StatusType struct {
	State     string `json:"state"`
	Detail    string `json:"detail"`
	Completed bool   `json:"completed"`
}

type Competition struct {
	ID          string       `json:"id"`
	Competitors []Competitor `json:"competitors"`
	Venue       Venue        `json:"venue"`
}

type Competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     Team   `json:"team"`
}

type Team struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Logo         string `json:"logo"`
}

type Venue struct {
	FullName string `json:"fullName"`
}

type SummaryResponse struct {
	Boxscore Boxscore `json:"boxscore"`
}

type Boxscore struct {
	Players []TeamPlayers `json:"players"`
}

type TeamPlayers struct {
	Team       Team        `json:"team"`
	Statistics []StatBlock `json:"statistics"`
}

type StatBlock struct {
	Labels   []string      `json:"labels"`
	Athletes []AthleteLine `json:"athletes"`
}

type AthleteLine struct {
	Athlete Athlete  `json:"athlete"`
	Stats   []string `json:"stats"`
}

type Athlete struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
