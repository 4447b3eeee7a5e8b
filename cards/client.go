package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimitDelay = 100 * time.Millisecond
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client fetches card records from a pokemontcg.io v2 compatible API,
// with rate limiting and retries.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	backoff     time.Duration
}

// NewClient creates a card data client for the given API base URL.
// apiKey may be empty for anonymous access.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		backoff:     initialBackoff,
	}
}

// wireCard is the provider's card shape; HP arrives as a string.
type wireCard struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HP          string    `json:"hp"`
	Types       []string  `json:"types"`
	Weaknesses  []Matchup `json:"weaknesses"`
	Resistances []Matchup `json:"resistances"`
	Images      struct {
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"images"`
	Set SetInfo `json:"set"`
}

func (w *wireCard) toCard() Card {
	return Card{
		ID:          w.ID,
		Name:        w.Name,
		Image:       w.Images.Small,
		HP:          ParseHP(w.HP),
		Types:       w.Types,
		Weaknesses:  w.Weaknesses,
		Resistances: w.Resistances,
		Set:         w.Set,
	}
}

type cardEnvelope struct {
	Data wireCard `json:"data"`
}

type listEnvelope struct {
	Data       []wireCard `json:"data"`
	TotalCount int        `json:"totalCount"`
}

// GetCard retrieves a single card by its provider ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(id))

	var env cardEnvelope
	if err := c.doRequest(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	card := env.Data.toCard()
	return &card, nil
}

// ListCards retrieves one page of the card catalogue and the total count.
func (c *Client) ListCards(ctx context.Context, page, pageSize int) ([]Card, int, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	u := fmt.Sprintf("%s/cards?%s", c.baseURL, q.Encode())

	var env listEnvelope
	if err := c.doRequest(ctx, u, &env); err != nil {
		return nil, 0, fmt.Errorf("failed to list cards (page %d): %w", page, err)
	}
	list := make([]Card, len(env.Data))
	for i := range env.Data {
		list[i] = env.Data[i].toCard()
	}
	return list, env.TotalCount, nil
}

// doRequest performs a GET with rate limiting and retry with backoff.
// Server errors and 429 are retried; other non-200 statuses are not.
func (c *Client) doRequest(ctx context.Context, u string, result interface{}) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			lastErr = func() error {
				defer resp.Body.Close()
				switch {
				case resp.StatusCode == http.StatusOK:
					if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
						return fmt.Errorf("failed to decode response: %w", err)
					}
					return nil
				case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
					io.Copy(io.Discard, resp.Body)
					return fmt.Errorf("retryable status %d", resp.StatusCode)
				default:
					io.Copy(io.Discard, resp.Body)
					return &StatusError{Code: resp.StatusCode}
				}
			}()
			if lastErr == nil {
				return nil
			}
			var se *StatusError
			if errors.As(lastErr, &se) {
				return lastErr
			}
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// StatusError is returned for non-retryable HTTP statuses (e.g. 404).
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// NotFound reports whether the error is a provider 404.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// IsNotFound reports whether err wraps a provider 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.NotFound()
}
