package nba

import (
	"context"

	"github.com/omarshaarawi/hoopscores/internal/api/espn"
	"github.com/omarshaarawi/hoopscores/internal/models"
)

type API struct {
	espnAPI *espn.API
}

func NewAPI(espnAPI *espn.API) *API {
	return &API{espnAPI: espnAPI}
}

func (a *API) DayGames(ctx context.Context, dateKey string) ([]models.Game, error) {
	return a.espnAPI.GetScoreboard(ctx, dateKey)
}

func (a *API) GameDetail(ctx context.Context, gameID string) (*models.GameDetail, error) {
	return a.espnAPI.GetSummary(ctx, gameID)
}
