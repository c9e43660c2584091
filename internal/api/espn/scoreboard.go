package espn

import (
	"context"
	"fmt"
	"time"

	"github.com/omarshaarawi/hoopscores/internal/models"
)

var eventDateLayouts = []string{
	"2006-01-02T15:04Z07:00",
	time.RFC3339,
}

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

// GetScoreboard returns every event ESPN lists for the YYYYMMDD dateKey, in
// the order ESPN returns them.
func (a *API) GetScoreboard(ctx context.Context, dateKey string) ([]models.Game, error) {
	var scoreboard models.ScoreboardResponse
	params := map[string]string{
		"dates": dateKey,
	}

	if err := a.client.Get(ctx, "/scoreboard", params, &scoreboard); err != nil {
		return nil, fmt.Errorf("fetching scoreboard for %s: %w", dateKey, err)
	}

	games := make([]models.Game, 0, len(scoreboard.Events))
	for _, event := range scoreboard.Events {
		games = append(games, toGame(event))
	}

	return games, nil
}

// GetSummary returns the boxscore statistics for a single event.
func (a *API) GetSummary(ctx context.Context, gameID string) (*models.GameDetail, error) {
	var summary models.SummaryResponse
	params := map[string]string{
		"event": gameID,
	}

	if err := a.client.Get(ctx, "/summary", params, &summary); err != nil {
		return nil, fmt.Errorf("fetching summary for game %s: %w", gameID, err)
	}

	detail := &models.GameDetail{
		GameID: gameID,
		Teams:  make(map[string]models.StatTable, len(summary.Boxscore.Players)),
	}

	for _, team := range summary.Boxscore.Players {
		if len(team.Statistics) == 0 {
			continue
		}

		block := team.Statistics[0]
		table := models.StatTable{
			Headers: block.Labels,
			Rows:    make([]models.PlayerRow, 0, len(block.Athletes)),
		}
		for _, line := range block.Athletes {
			table.Rows = append(table.Rows, models.PlayerRow{
				Name:  line.Athlete.DisplayName,
				Stats: line.Stats,
			})
		}
		detail.Teams[team.Team.ID] = table
	}

	return detail, nil
}

func toGame(event models.Event) models.Game {
	game := models.Game{
		ID:           event.ID,
		State:        event.Status.Type.State,
		StatusDetail: event.Status.Type.Detail,
		Date:         parseEventDate(event.Date),
	}

	if len(event.Competitions) == 0 {
		return game
	}

	competition := event.Competitions[0]
	game.Venue = competition.Venue.FullName

	for _, c := range competition.Competitors {
		line := models.TeamLine{
			ID:           c.Team.ID,
			Abbreviation: c.Team.Abbreviation,
			DisplayName:  c.Team.DisplayName,
			Logo:         c.Team.Logo,
			Score:        c.Score,
		}
		switch c.HomeAway {
		case "home":
			game.Home = line
		case "away":
			game.Away = line
		}
	}

	return game
}

func parseEventDate(s string) time.Time {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
