package bot

import (
	"fmt"
	"strings"

	"github.com/omarshaarawi/hoopscores/internal/gameday"
	"github.com/omarshaarawi/hoopscores/internal/models"
)

// FormatView renders a view as a Telegram Markdown message.
func FormatView(view models.View) string {
	var sb strings.Builder

	switch view.Kind {
	case models.ViewGame:
		if view.Game == nil {
			return ""
		}
		formatGame(&sb, view.Game)
	case models.ViewEmpty:
		sb.WriteString("📅 *No Games Yesterday*\n\n")
		sb.WriteString(view.Message)
		sb.WriteString("\n")
	case models.ViewError:
		sb.WriteString("⚠️ *Unable to Load Data*\n\n")
		sb.WriteString(view.Message)
		sb.WriteString("\n")
	default:
		sb.WriteString(view.Message)
		sb.WriteString("\n")
	}

	if view.Total > 0 {
		sb.WriteString(fmt.Sprintf("\nGame %d of %d", view.Position, view.Total))
		if view.Paused {
			sb.WriteString(" (paused)")
		}
		sb.WriteString("\n")
	}
	if !view.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("_Updated %s_\n", view.UpdatedAt.In(gameday.Zone).Format("Jan 2, 3:04 PM")))
	}

	return sb.String()
}

func formatGame(sb *strings.Builder, g *models.GameView) {
	sb.WriteString(fmt.Sprintf("🏀 *%s*\n", g.Title))
	sb.WriteString(g.Venue)
	if g.Date != "" {
		sb.WriteString(" • ")
		sb.WriteString(g.Date)
	}
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("*%s %s - %s %s* (FINAL", g.Away.Abbreviation, g.Away.Score, g.Home.Score, g.Home.Abbreviation))
	if g.Status != "" {
		sb.WriteString(", ")
		sb.WriteString(g.Status)
	}
	sb.WriteString(")\n")

	formatTeam(sb, g.AwayStats)
	formatTeam(sb, g.HomeStats)
}

func formatTeam(sb *strings.Builder, team models.TeamStatsView) {
	sb.WriteString(fmt.Sprintf("\n*%s*\n", team.TeamName))
	if team.Message != "" {
		sb.WriteString(team.Message)
		sb.WriteString("\n")
		return
	}

	widths := make([]int, len(team.Headers))
	for i, h := range team.Headers {
		widths[i] = len(h)
	}
	nameWidth := len("Player")
	for _, row := range team.Rows {
		nameWidth = max(nameWidth, len(row.Name))
		for i, stat := range row.Stats {
			if i < len(widths) {
				widths[i] = max(widths[i], len(stat))
			}
		}
	}

	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("%-*s", nameWidth, "Player"))
	for i, h := range team.Headers {
		sb.WriteString(fmt.Sprintf(" %*s", widths[i], h))
	}
	sb.WriteString("\n")
	for _, row := range team.Rows {
		sb.WriteString(fmt.Sprintf("%-*s", nameWidth, row.Name))
		for i, stat := range row.Stats {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			sb.WriteString(fmt.Sprintf(" %*s", w, stat))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
}
