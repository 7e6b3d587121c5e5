// Package runalyze downloads data browser reports and post-processes the
// activities extracted from them.
package runalyze

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-runalyze/internal/config"
	"github.com/penwyp/go-runalyze/internal/util"
	"golang.org/x/time/rate"
)

const dataBrowserPath = "/call/call.DataBrowser.display.php"

// Client fetches data browser pages with an existing session cookie.
type Client struct {
	baseURL    string
	cookie     string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client from cfg. Requests are spaced by
// cfg.RequestInterval.
func NewClient(cfg *config.Config) *Client {
	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		cookie:    cfg.Cookie,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// YearRange returns local midnight of January 1st and the last second of
// December 31st of year.
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, loc)
	return start, end
}

// FetchYear returns the raw data browser page covering year.
func (c *Client) FetchYear(ctx context.Context, year int, loc *time.Location) ([]byte, error) {
	start, end := YearRange(year, loc)
	return c.Fetch(ctx, start, end)
}

// Fetch returns the raw data browser page for activities between start and end.
func (c *Client) Fetch(ctx context.Context, start, end time.Time) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("start", strconv.FormatInt(start.Unix(), 10))
	query.Set("end", strconv.FormatInt(end.Unix(), 10))
	endpoint := c.baseURL + dataBrowserPath + "?" + query.Encode()

	util.LogInfo(fmt.Sprintf("Fetching activities %s -> %s", start.Format("2006-01-02"), end.Format("2006-01-02")))
	util.LogDebug(fmt.Sprintf("Request URL: %s", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("Accept", "text/html, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.baseURL+"/dashboard")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		util.LogDebug(fmt.Sprintf("Unexpected HTTP status code: %d", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
