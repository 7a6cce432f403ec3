// Package enrich looks up optional profile data for an email address at
// registration time and rejects addresses that are clearly unusable.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// ErrInvalidEmail is a hard rejection: the address must not be registered.
var ErrInvalidEmail = errors.New("email address rejected")

// Profile holds the optional fields copied onto a new user.
type Profile struct {
	Bio      *string
	Role     *string
	Location *string
}

// Hook is the best-effort enrichment step of registration.
// A nil profile with a nil error means nothing was found.
type Hook interface {
	Lookup(ctx context.Context, email string) (*Profile, error)
}

// Config configures the remote lookup. An empty URL disables it and leaves
// only the local syntax check.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client validates the address locally, then asks the remote profile service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	validate   *validator.Validate
	breaker    *gobreaker.CircuitBreaker[*Profile]
}

var _ Hook = (*Client)(nil)

// NewClient creates a new enrichment client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		validate:   validator.New(),
		breaker: gobreaker.NewCircuitBreaker[*Profile](gobreaker.Settings{
			Name:        "enrich",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// A rejected address is an answer, not an outage.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrInvalidEmail)
			},
		}),
	}
}

// Lookup implements Hook.
func (c *Client) Lookup(ctx context.Context, email string) (*Profile, error) {
	if err := c.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	if c.cfg.URL == "" {
		return nil, nil
	}
	return c.breaker.Execute(func() (*Profile, error) {
		return c.fetch(ctx, email)
	})
}

type lookupResponse struct {
	Status string `json:"status"`
	Person *struct {
		Bio        *string `json:"bio"`
		Location   *string `json:"location"`
		Employment *struct {
			Role *string `json:"role"`
		} `json:"employment"`
	} `json:"person"`
}

func (c *Client) fetch(ctx context.Context, email string) (*Profile, error) {
	endpoint, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse enrich url: %w", err)
	}
	q := endpoint.Query()
	q.Set("email", email)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build enrich request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrich request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	default:
		return nil, fmt.Errorf("enrich service returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read enrich response: %w", err)
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse enrich response: %w", err)
	}

	if parsed.Status == "invalid" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	if parsed.Person == nil {
		return nil, nil
	}

	profile := &Profile{
		Bio:      parsed.Person.Bio,
		Location: parsed.Person.Location,
	}
	if parsed.Person.Employment != nil {
		profile.Role = parsed.Person.Employment.Role
	}
	return profile, nil
}
