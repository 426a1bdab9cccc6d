package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelsync/internal/ir"
)

const gameBody = `{"game": {
	"id": 7,
	"timeline": {
		"lines": [["storylet_start", "a01_a001_a001"], ["play_video", "01_001_001"]],
		"actions": [["ui_button", "Run", "k_run"]]
	},
	"visited_storylets": ["a01_a001_a001"],
	"selected_actions": []
}}`

func TestClientRoutes(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/games":
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte(`{"games": [{"id": 7}, {"id": 9}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"id": 12}`))
		default:
			_, _ = w.Write([]byte(gameBody))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	saves, err := c.ListSaves(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ir.SaveSummary{{ID: 7}, {ID: 9}}, saves)

	id, err := c.CreateSave(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	save, err := c.FetchSave(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), save.ID)
	require.Len(t, save.Timeline.Lines, 2)
	assert.Equal(t, ir.PlayVideo{Video: "01_001_001"}, save.Timeline.Lines[1])
	assert.Equal(t, ir.PendingActions{ir.UIButton{Label: "Run", Key: "k_run"}}, save.Timeline.Actions)

	_, err = c.Act(ctx, 7, 2)
	require.NoError(t, err)
	_, err = c.Jump(ctx, 7, "a01_a002_a001")
	require.NoError(t, err)
	_, err = c.CopySave(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /api/games",
		"POST /api/games",
		"GET /api/games/7",
		"POST /api/games/7/act/2",
		"POST /api/games/7/jump/a01_a002_a001",
		"POST /api/games/7/copy",
	}, seen)
}

func TestClientUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchSave(context.Background(), 1)

	require.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsUnauthorized(err))
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListSaves(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.False(t, IsUnauthorized(err))
}

func TestClientSessionCookie(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(SessionCookie)
		if err == nil {
			got = append(got, ck.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "rotated"})
		_, _ = w.Write([]byte(`{"games": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithSession("initial"))
	ctx := context.Background()

	_, err := c.ListSaves(ctx)
	require.NoError(t, err)
	_, err = c.ListSaves(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"initial", "rotated"}, got)
	assert.Equal(t, "rotated", c.Session())
}

func TestClientDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"game": {"id": 1, "timeline": {"lines": [["warp", "x"]]}}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchSave(context.Background(), 1)

	var uv *ir.UnhandledVariantError
	require.ErrorAs(t, err, &uv)
}

func TestClientMissingGameEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_hint": "try again"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	calls := map[string]func() (*ir.Save, error){
		"fetch": func() (*ir.Save, error) { return c.FetchSave(ctx, 1) },
		"act":   func() (*ir.Save, error) { return c.Act(ctx, 1, 0) },
		"jump":  func() (*ir.Save, error) { return c.Jump(ctx, 1, "a01_a001_a001") },
		"copy":  func() (*ir.Save, error) { return c.CopySave(ctx, 1) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			save, err := call()
			require.ErrorIs(t, err, ErrNoSave)
			assert.Nil(t, save)
		})
	}

	_, err := c.CreateSave(ctx)
	require.ErrorIs(t, err, ErrNoSave)
}

func TestClientEmptyBodyIsNoSave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Act(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrNoSave)
}

func TestClientCopyAcceptsBareSave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 8, "timeline": {"lines": [["play_video", "01_001_001"]], "actions": []}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	save, err := c.CopySave(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(8), save.ID)
	assert.Len(t, save.Timeline.Lines, 1)

	_, err = c.FetchSave(context.Background(), 8)
	require.ErrorIs(t, err, ErrNoSave, "only copy answers with a bare save")
}
