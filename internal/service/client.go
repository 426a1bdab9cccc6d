package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roach88/reelsync/internal/ir"
)

// SessionCookie is the cookie that carries the server session.
const SessionCookie = "_session"

// Client is the HTTP implementation of SaveService.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	session string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSession sets the initial session cookie value.
func WithSession(session string) ClientOption {
	return func(c *Client) {
		c.session = session
	}
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session cookie value. The server may rotate
// it on any response.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

type gamesEnvelope struct {
	Games []ir.SaveSummary `json:"games"`
}

type createdEnvelope struct {
	Game *ir.SaveSummary `json:"game"`
	ID   int64           `json:"id"`
}

// decodeSave reads the {"game": ...} envelope. With bare set, a body that is
// itself a save (it has a timeline) is accepted too; the copy route answers
// that way.
func decodeSave(raw json.RawMessage, bare bool) (*ir.Save, error) {
	if len(raw) == 0 {
		return nil, ErrNoSave
	}
	var env struct {
		Game     json.RawMessage `json:"game"`
		Timeline json.RawMessage `json:"timeline"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	body := env.Game
	if absent(body) {
		if !bare || absent(env.Timeline) {
			return nil, ErrNoSave
		}
		body = raw
	}

	var save ir.Save
	if err := json.Unmarshal(body, &save); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	return &save, nil
}

func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// ListSaves implements SaveService.
func (c *Client) ListSaves(ctx context.Context) ([]ir.SaveSummary, error) {
	var env gamesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/games", &env); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return env.Games, nil
}

// CreateSave implements SaveService.
func (c *Client) CreateSave(ctx context.Context) (int64, error) {
	var env createdEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/games", &env); err != nil {
		return 0, fmt.Errorf("create save: %w", err)
	}
	id := env.ID
	if env.Game != nil {
		id = env.Game.ID
	}
	if id == 0 {
		return 0, fmt.Errorf("create save: %w", ErrNoSave)
	}
	return id, nil
}

// FetchSave implements SaveService.
func (c *Client) FetchSave(ctx context.Context, id int64) (*ir.Save, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, gamePath(id), &raw); err != nil {
		return nil, fmt.Errorf("fetch save %d: %w", id, err)
	}
	save, err := decodeSave(raw, false)
	if err != nil {
		return nil, fmt.Errorf("fetch save %d: %w", id, err)
	}
	return save, nil
}

// Act implements SaveService.
func (c *Client) Act(ctx context.Context, id int64, index int) (*ir.Save, error) {
	var raw json.RawMessage
	path := gamePath(id) + "/act/" + strconv.Itoa(index)
	if err := c.do(ctx, http.MethodPost, path, &raw); err != nil {
		return nil, fmt.Errorf("act on save %d: %w", id, err)
	}
	save, err := decodeSave(raw, false)
	if err != nil {
		return nil, fmt.Errorf("act on save %d: %w", id, err)
	}
	return save, nil
}

// Jump implements SaveService.
func (c *Client) Jump(ctx context.Context, id int64, storylet string) (*ir.Save, error) {
	var raw json.RawMessage
	path := gamePath(id) + "/jump/" + url.PathEscape(storylet)
	if err := c.do(ctx, http.MethodPost, path, &raw); err != nil {
		return nil, fmt.Errorf("jump save %d to %s: %w", id, storylet, err)
	}
	save, err := decodeSave(raw, false)
	if err != nil {
		return nil, fmt.Errorf("jump save %d to %s: %w", id, storylet, err)
	}
	return save, nil
}

// CopySave implements SaveService.
func (c *Client) CopySave(ctx context.Context, id int64) (*ir.Save, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, gamePath(id)+"/copy", &raw); err != nil {
		return nil, fmt.Errorf("copy save %d: %w", id, err)
	}
	save, err := decodeSave(raw, true)
	if err != nil {
		return nil, fmt.Errorf("copy save %d: %w", id, err)
	}
	return save, nil
}

func gamePath(id int64) string {
	return "/api/games/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if s := c.Session(); s != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: s})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.updateSession(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Warn("session rejected", "method", method, "path", path)
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) updateSession(resp *http.Response) {
	for _, ck := range resp.Cookies() {
		if ck.Name != SessionCookie || ck.Value == "" {
			continue
		}
		c.mu.Lock()
		changed := ck.Value != c.session
		c.session = ck.Value
		c.mu.Unlock()
		if changed {
			slog.Debug("session rotated")
		}
	}
}

var _ SaveService = (*Client)(nil)
