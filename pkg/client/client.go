// Package client is a Go client for the heroes HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"heroes/internal/catalog"
	"heroes/internal/models"
	"heroes/internal/repositories"
	"heroes/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds every request unless WithTimeout says otherwise.
const DefaultTimeout = 10 * time.Second

// UploadResult is returned by UploadImage.
type UploadResult struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Message      string `json:"message"`
}

// Client talks to one heroes server. It is safe for concurrent use.
type Client struct {
	origin  string
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// Option customises New.
type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		origin:  u.Scheme + "://" + u.Host + strings.TrimRight(u.Path, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ImageURL resolves an image reference for display. Absolute references are
// returned as is, relative ones are prefixed with the server origin.
func (c *Client) ImageURL(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	}
	return c.origin + "/" + strings.TrimLeft(ref, "/")
}

// Login exchanges admin credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	a := fiber.Post(c.api("/auth/login"))
	if err := setJSON(a, map[string]string{"username": username, "password": password}); err != nil {
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, a, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// List returns the characters matching criteria, filtered on the server.
func (c *Client) List(ctx context.Context, criteria catalog.Criteria) ([]models.Character, error) {
	a := fiber.Get(c.api("/characters"))
	setQuery(a, map[string]string{
		"q":         criteria.Text,
		"status":    string(criteria.Status),
		"alignment": string(criteria.Alignment),
	})

	var out []models.Character
	if err := c.do(ctx, a, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one character.
func (c *Client) Get(ctx context.Context, id string) (*models.Character, error) {
	var out models.Character
	if err := c.do(ctx, fiber.Get(c.api("/characters/"+url.PathEscape(id))), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save validates rec locally and creates it when it has no ID, otherwise
// replaces the stored record. An invalid rec is returned as a
// *validation.Error without contacting the server.
func (c *Client) Save(ctx context.Context, rec models.Character) (*models.Character, error) {
	if err := validation.Validate(rec).Err(); err != nil {
		return nil, err
	}

	var a *fiber.Agent
	if rec.IsNew() {
		a = fiber.Post(c.api("/characters"))
	} else {
		a = fiber.Put(c.api("/characters/" + url.PathEscape(rec.ID)))
	}
	if err := setJSON(a, rec); err != nil {
		return nil, err
	}

	var out models.Character
	if err := c.do(ctx, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a character.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, fiber.Delete(c.api("/characters/"+url.PathEscape(id))), nil)
}

// Stats returns the server side aggregate of the whole catalog.
func (c *Client) Stats(ctx context.Context) (catalog.Stats, error) {
	var out catalog.Stats
	err := c.do(ctx, fiber.Get(c.api("/characters/stats")), &out)
	return out, err
}

// SearchByName returns characters whose name contains name.
func (c *Client) SearchByName(ctx context.Context, name string) ([]models.Character, error) {
	return c.list(ctx, "/characters/search", map[string]string{"name": name})
}

// SearchByRealName returns characters whose real name contains realName.
func (c *Client) SearchByRealName(ctx context.Context, realName string) ([]models.Character, error) {
	return c.list(ctx, "/characters/real-name", map[string]string{"real_name": realName})
}

// SearchByOrigin returns characters whose origin contains origin.
func (c *Client) SearchByOrigin(ctx context.Context, origin string) ([]models.Character, error) {
	return c.list(ctx, "/characters/origin", map[string]string{"origin": origin})
}

// SearchByAffiliation returns characters with exactly this affiliation.
func (c *Client) SearchByAffiliation(ctx context.Context, affiliation string) ([]models.Character, error) {
	return c.list(ctx, "/characters/affiliation/"+url.PathEscape(affiliation), nil)
}

// SearchByStatus returns characters with the given status.
func (c *Client) SearchByStatus(ctx context.Context, status models.Status) ([]models.Character, error) {
	return c.list(ctx, "/characters/status/"+url.PathEscape(string(status)), nil)
}

// Search combines the non-empty criteria with AND on the server.
func (c *Client) Search(ctx context.Context, criteria repositories.SearchCriteria) ([]models.Character, error) {
	return c.list(ctx, "/characters/filter", map[string]string{
		"name":        criteria.Name,
		"affiliation": criteria.Affiliation,
		"status":      string(criteria.Status),
		"universe":    criteria.Universe,
		"origin":      criteria.Origin,
	})
}

// Exists reports whether a character with this name exists.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	var out bool
	err := c.do(ctx, fiber.Get(c.api("/characters/exists/"+url.PathEscape(name))), &out)
	return out, err
}

// UploadImage stores data on the server and returns where it can be fetched.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	a := fiber.Post(c.api("/upload/image"))
	a.FileData(&fiber.FormFile{Fieldname: "file", Name: filename, Content: data}).MultipartForm(nil)

	var out UploadResult
	if err := c.do(ctx, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteImage removes a stored image and its thumbnail.
func (c *Client) DeleteImage(ctx context.Context, filename string) error {
	return c.do(ctx, fiber.Delete(c.api("/upload/image/"+url.PathEscape(filename))), nil)
}

func (c *Client) api(path string) string {
	return c.origin + "/api" + path
}

func (c *Client) list(ctx context.Context, path string, query map[string]string) ([]models.Character, error) {
	a := fiber.Get(c.api(path))
	setQuery(a, query)

	var out []models.Character
	if err := c.do(ctx, a, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func setJSON(a *fiber.Agent, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		fiber.ReleaseAgent(a)
		return unknownError(fmt.Errorf("encode request: %w", err))
	}
	a.ContentType(fiber.MIMEApplicationJSON).Body(body)
	return nil
}

func setQuery(a *fiber.Agent, query map[string]string) {
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	for k, v := range query {
		if v != "" {
			args.Set(k, v)
		}
	}
	if args.Len() > 0 {
		a.QueryString(args.String())
	}
}

// do sends the request built on a and decodes a 2xx JSON body into out.
// a is released before do returns.
func (c *Client) do(ctx context.Context, a *fiber.Agent, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return unknownError(err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout <= 0 {
			timeout = left
		}
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}
	if token := c.Token(); token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	req := a.Request()
	method, uri := string(req.Header.Method()), req.URI().String()
	start := time.Now()

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.Debug().Err(err).Str("method", method).Str("url", uri).Msg("api request failed")
		return networkError(err)
	}
	log.Debug().
		Str("method", method).
		Str("url", uri).
		Int("status", status).
		Dur("took", time.Since(start)).
		Msg("api request")

	if status >= fiber.StatusBadRequest {
		return responseError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return unknownError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
