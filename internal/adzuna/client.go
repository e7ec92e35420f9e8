package adzuna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cuongbtq/jobfeed-etl/internal/ingest/domain"
)

// DefaultBaseURL is the public Adzuna API host
const DefaultBaseURL = "https://api.adzuna.com"

// Config holds search API credentials and fetch behavior
type Config struct {
	BaseURL        string
	AppID          string
	AppKey         string
	Country        string
	MaxDaysOld     int
	ResultsPerPage int
	MaxRetries     int
	RetryDelay     time.Duration
	Timeout        time.Duration
}

// Client fetches job listings from the Adzuna search API
type Client struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a new search API client
func NewClient(config *Config, logger *slog.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// searchResponse mirrors the top-level Adzuna JSON response. Results are
// kept as raw messages so each listing's original bytes survive into the
// stored payload.
type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// Fetch retrieves the first result page for every query term, in the
// order given, and concatenates the listings. A term that exhausts its
// retries fails the whole fetch; listings already gathered for earlier
// terms are returned alongside the error for diagnostics and must not
// be loaded.
func (c *Client) Fetch(ctx context.Context, terms []string) ([]domain.RawListing, error) {
	var all []domain.RawListing

	for _, term := range terms {
		listings, err := c.fetchTerm(ctx, term)
		if err != nil {
			return all, fmt.Errorf("fetching %q: %w", term, err)
		}

		c.logger.Info("Fetched listings",
			slog.String("term", term),
			slog.Int("count", len(listings)),
		)

		all = append(all, listings...)
	}

	return all, nil
}

// fetchTerm issues the search request for one term, retrying failures
// with a fixed delay. It makes at most MaxRetries+1 calls.
func (c *Client) fetchTerm(ctx context.Context, term string) ([]domain.RawListing, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying search request",
				slog.String("term", term),
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", c.config.MaxRetries+1),
				slog.Any("error", lastErr),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		listings, err := c.search(ctx, term)
		if err == nil {
			return listings, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) search(ctx context.Context, term string) ([]domain.RawListing, error) {
	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/1", c.config.BaseURL, c.config.Country)

	params := url.Values{}
	params.Set("app_id", c.config.AppID)
	params.Set("app_key", c.config.AppKey)
	params.Set("what", term)
	params.Set("where", c.config.Country)
	params.Set("max_days_old", strconv.Itoa(c.config.MaxDaysOld))
	params.Set("results_per_page", strconv.Itoa(c.config.ResultsPerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	// A response without a results list is an empty contribution for
	// this term, not an error.
	listings := make([]domain.RawListing, 0, len(parsed.Results))
	for _, raw := range parsed.Results {
		var listing domain.RawListing
		if err := json.Unmarshal(raw, &listing); err != nil {
			return nil, fmt.Errorf("decoding listing: %w", err)
		}
		listing.Raw = raw
		listings = append(listings, listing)
	}

	return listings, nil
}
