package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/omarshaarawi/hoopscores/internal/config"
	"golang.org/x/time/rate"
)

var (
	// ErrFetch covers transport failures and non-OK responses.
	ErrFetch = errors.New("fetch failure")
	// ErrParse covers bodies that are not the JSON shape we expect.
	ErrParse = errors.New("parse failure")
)

type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	Config     config.ESPNAPI
}

func NewClient(cfg config.ESPNAPI) *Client {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		Config:     cfg,
	}
}

// URL builds the upstream address for endpoint and prepends the relay
// prefix. The relay receives the full upstream URL, query included.
func (c *Client) URL(endpoint string, params map[string]string) (string, error) {
	u, err := url.Parse(c.Config.BaseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("error parsing url: %w", err)
	}

	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	return c.Config.RelayPrefix + u.String(), nil
}

func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, result interface{}) error {
	target, err := c.URL(endpoint, params)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: waiting for rate limiter: %v", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: error making request: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status code: %d", ErrFetch, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: error decoding response: %v", ErrParse, err)
	}

	return nil
}
