package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/neurolens/internal/api"
	"github.com/ashureev/neurolens/internal/domain"
)

func TestStateDecodesSnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/state", r.URL.Path)
		api.JSON(w, http.StatusOK, api.StateResponse{
			Brightness: 50, Noise: 10, BrightnessThreshold: 30, NoiseThreshold: 20,
			ChildMode: domain.ModeCalm, Exceeded: true,
		})
	}))
	defer srv.Close()

	state, err := New(srv.URL + "/").State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, state.Brightness)
	assert.Equal(t, domain.ModeCalm, state.ChildMode)
	assert.True(t, state.Exceeded)
}

func TestSettersUseQueryParameters(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path+"?"+r.URL.RawQuery)
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	require.NoError(t, c.SetThresholds(ctx, 30, 20))
	require.NoError(t, c.SetEnvironment(ctx, 55, 12))
	require.NoError(t, c.SetChildMode(ctx, domain.ModeFocus))

	assert.Equal(t, []string{
		"/set-thresholds?brightness=30&noise=20",
		"/set-environment?brightness=55&noise=12",
		"/set-child-mode?mode=Focus",
	}, seen)
}

func TestChatSendsJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Message)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		api.JSON(w, http.StatusOK, api.ReplyResponse{Reply: "hi " + *req.Message, Source: "local"})
	}))
	defer srv.Close()

	reply, err := New(srv.URL).Chat(context.Background(), "there")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply.Reply)
	assert.Equal(t, "local", reply.Source)
}

func TestStudyCalls(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/study/highlights", func(w http.ResponseWriter, r *http.Request) {
		var req api.StudyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		api.JSON(w, http.StatusOK, api.HighlightsResponse{Highlights: []string{*req.Text}})
	})
	mux.HandleFunc("/study/chat", func(w http.ResponseWriter, r *http.Request) {
		var req api.StudyChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		api.JSON(w, http.StatusOK, api.ReplyResponse{Reply: *req.Question + "|" + *req.Text})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	hl, err := c.StudyHighlights(context.Background(), "cells")
	require.NoError(t, err)
	assert.Equal(t, []string{"cells"}, hl.Highlights)

	reply, err := c.StudyChat(context.Background(), "why", "cells")
	require.NoError(t, err)
	assert.Equal(t, "why|cells", reply.Reply)
}

func TestNon2xxReturnsStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		api.Error(w, http.StatusUnprocessableEntity, "mode must be one of Calm, Focus, Neutral")
	}))
	defer srv.Close()

	err := New(srv.URL).SetChildMode(context.Background(), "Party")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).State(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, WithTimeouts(Timeouts{State: 50 * time.Millisecond}))
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestAutoAdjustAndDetect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auto-adjust", func(w http.ResponseWriter, _ *http.Request) {
		api.JSON(w, http.StatusOK, map[string]interface{}{"status": "adjusted", "brightness": 45, "noise": 37})
	})
	mux.HandleFunc("/detect-thresholds", func(w http.ResponseWriter, _ *http.Request) {
		api.JSON(w, http.StatusOK, map[string]int{"brightness": 56, "noise": 38})
	})
	mux.HandleFunc("/thresholds", func(w http.ResponseWriter, _ *http.Request) {
		api.JSON(w, http.StatusOK, map[string]int{"brightness": 50, "noise": 40})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	b, n, err := c.AutoAdjust(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [2]int{45, 37}, [2]int{b, n})

	b, n, err = c.DetectThresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [2]int{56, 38}, [2]int{b, n})

	b, n, err = c.Thresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [2]int{50, 40}, [2]int{b, n})
}
