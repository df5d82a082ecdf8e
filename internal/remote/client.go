// Package remote talks to a cards server over HTTP: it loads and saves cards
// and submits batch relationship requests.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resource-cards/internal/logger"
	"resource-cards/internal/model"
)

type Config struct {
	BaseURL     string
	CardPath    string
	RelatedPath string
	Timeout     time.Duration
}

// HTTPError is a non-2xx answer from the server.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("remote: missing base url")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("remote: base url: %w", err)
	}
	if cfg.CardPath == "" {
		cfg.CardPath = "/cards/"
	}
	if cfg.RelatedPath == "" {
		cfg.RelatedPath = "/related_resources"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		log:        log.With("client", "CardsClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) url(parts ...string) string {
	var b strings.Builder
	b.WriteString(c.cfg.BaseURL)
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

// Card loads the construction payload for a card.
func (c *Client) Card(ctx context.Context, cardID string) (model.CardPayload, error) {
	var out model.CardPayload
	err := c.do(ctx, http.MethodGet, c.url(c.cfg.CardPath, url.PathEscape(cardID)), "", nil, &out)
	return out, err
}

// Cards lists root cards.
func (c *Client) Cards(ctx context.Context) ([]model.CardSummary, error) {
	var env struct {
		Data []model.CardSummary `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, c.url(c.cfg.CardPath), "", nil, &env)
	return env.Data, err
}

// SaveCard posts a serialized card and returns the stored card.
func (c *Client) SaveCard(ctx context.Context, cardID string, body []byte) (json.RawMessage, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, c.url(c.cfg.CardPath, url.PathEscape(cardID)), "application/json", bytes.NewReader(body), &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateRelationships submits a form-encoded batch create request.
func (c *Client) CreateRelationships(ctx context.Context, req model.RelationshipRequest) ([]model.Relationship, error) {
	form := url.Values{}
	form.Set("relationship_type", req.RelationshipType)
	form.Set("root_resourceinstanceid", req.RootResourceInstanceID)
	for _, id := range req.InstancesToRelate {
		form.Add("instances_to_relate[]", id)
	}
	var env struct {
		Data []model.Relationship `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, c.url(c.cfg.RelatedPath), "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &env)
	return env.Data, err
}

// RelatedTo lists relationships touching a resource.
func (c *Client) RelatedTo(ctx context.Context, resourceID string) ([]model.Relationship, error) {
	var env struct {
		Data []model.Relationship `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, c.url(c.cfg.RelatedPath, url.PathEscape(resourceID)), "", nil, &env)
	return env.Data, err
}

// Resources lists resource instances.
func (c *Client) Resources(ctx context.Context) ([]model.Resource, error) {
	var env struct {
		Data []model.Resource `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, c.url("resources"), "", nil, &env)
	return env.Data, err
}

func (c *Client) do(ctx context.Context, method, target, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "url", target, "error", err)
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	c.log.Debug("request done", "method", method, "url", target, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		he := &HTTPError{StatusCode: resp.StatusCode}
		var env struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &env) == nil {
			he.Message, he.Code = env.Error.Message, env.Error.Code
		}
		if he.Message == "" {
			he.Message = strings.TrimSpace(string(raw))
		}
		return he
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
