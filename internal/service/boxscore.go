package service

import (
	"fmt"

	"github.com/omarshaarawi/hoopscores/internal/api/espn"
	"github.com/omarshaarawi/hoopscores/internal/gameday"
	"github.com/omarshaarawi/hoopscores/internal/models"
)

const (
	defaultVenue  = "NBA Arena"
	gameDateStyle = "Monday, January 2, 2006"
	noPlayerData  = "No player data available"
)

// hiddenColumns are dropped from every rendered stat table; REB already
// carries their sum.
var hiddenColumns = map[string]bool{
	"OREB": true,
	"DREB": true,
}

// CompletedGames keeps the games in the post state, preserving order.
func CompletedGames(games []models.Game) []models.Game {
	completed := make([]models.Game, 0, len(games))
	for _, g := range games {
		if g.Completed() {
			completed = append(completed, g)
		}
	}
	return completed
}

// ProjectStats returns a copy of table without the hidden columns. Stats
// past the end of the header row have no label to match and are kept.
func ProjectStats(table models.StatTable) models.StatTable {
	headers := make([]string, 0, len(table.Headers))
	for _, h := range table.Headers {
		if !hiddenColumns[h] {
			headers = append(headers, h)
		}
	}

	rows := make([]models.PlayerRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		stats := make([]string, 0, len(row.Stats))
		for i, stat := range row.Stats {
			if i < len(table.Headers) && hiddenColumns[table.Headers[i]] {
				continue
			}
			stats = append(stats, stat)
		}
		rows = append(rows, models.PlayerRow{Name: row.Name, Stats: stats})
	}

	return models.StatTable{Headers: headers, Rows: rows}
}

// BuildGameView combines a day-list game with its boxscore detail.
func BuildGameView(game models.Game, detail *models.GameDetail) (*models.GameView, error) {
	if game.Home.ID == "" || game.Away.ID == "" {
		return nil, fmt.Errorf("%w: game %s is missing a home or away competitor", espn.ErrParse, game.ID)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: no detail for game %s", espn.ErrParse, game.ID)
	}

	venue := game.Venue
	if venue == "" {
		venue = defaultVenue
	}

	var date string
	if !game.Date.IsZero() {
		date = game.Date.In(gameday.Zone).Format(gameDateStyle)
	}

	return &models.GameView{
		ID:        game.ID,
		Title:     fmt.Sprintf("%s @ %s", game.Away.DisplayName, game.Home.DisplayName),
		Venue:     venue,
		Date:      date,
		Status:    game.StatusDetail,
		Away:      withScore(game.Away),
		Home:      withScore(game.Home),
		AwayStats: teamStats(detail, game.Away),
		HomeStats: teamStats(detail, game.Home),
	}, nil
}

func withScore(team models.TeamLine) models.TeamLine {
	if team.Score == "" {
		team.Score = "0"
	}
	return team
}

func teamStats(detail *models.GameDetail, team models.TeamLine) models.TeamStatsView {
	table, ok := detail.Teams[team.ID]
	if !ok {
		return models.TeamStatsView{TeamName: team.DisplayName, Message: noPlayerData}
	}

	projected := ProjectStats(table)
	return models.TeamStatsView{
		TeamName: team.DisplayName,
		Headers:  projected.Headers,
		Rows:     projected.Rows,
	}
}
