package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orion-screener/internal/config"
	"orion-screener/internal/models"
)

func matchResult(symbol string) models.ScreeningResult {
	return models.ScreeningResult{
		Symbol:         symbol,
		State:          models.StateMatched,
		Matches:        true,
		SignalStrength: 1.0,
		ConditionsMet:  []string{"trend", "oversold", "bounce"},
		Option: &models.OptionOpportunity{
			Contract: models.OptionContract{
				Symbol: symbol,
				Strike: 100,
				Expiry: time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
				Type:   models.OptionPut,
			},
			Yield: 0.25,
		},
	}
}

func TestServiceDisabledByConfig(t *testing.T) {
	svc := NewService(config.NotificationConfig{Enabled: false}, zerolog.Nop())
	assert.False(t, svc.Enabled())

	// Channels configured but the master switch is off.
	svc = NewService(config.NotificationConfig{
		Enabled: false,
		Webhook: config.WebhookConfig{Enabled: true, URL: "https://example.com"},
	}, zerolog.Nop())
	assert.False(t, svc.Enabled())
}

func TestWebhookDeliversMatchBatch(t *testing.T) {
	var body atomic.Pointer[[]byte]
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		body.Store(&data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(config.NotificationConfig{
		Enabled: true,
		Webhook: config.WebhookConfig{Enabled: true, URL: server.URL},
	}, zerolog.Nop())
	require.True(t, svc.Enabled())

	stats := models.ScreeningStats{Strategy: "ofi", Attempted: 2, Matched: 1}
	results := []models.ScreeningResult{
		matchResult("AAPL"),
		{Symbol: "MSFT", Matches: false},
	}
	svc.NotifyMatches(context.Background(), stats, results)

	got := body.Load()
	require.NotNil(t, got)

	var batch MatchBatch
	require.NoError(t, json.Unmarshal(*got, &batch))
	assert.Equal(t, "ofi", batch.Strategy)
	require.Len(t, batch.Matches, 1, "non-matches must be filtered out")
	assert.Equal(t, "AAPL", batch.Matches[0].Symbol)
}

func TestNotifyMatchesSkipsEmptyBatch(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(config.NotificationConfig{
		Enabled: true,
		Webhook: config.WebhookConfig{Enabled: true, URL: server.URL},
	}, zerolog.Nop())

	svc.NotifyMatches(context.Background(), models.ScreeningStats{}, []models.ScreeningResult{
		{Symbol: "MSFT", Matches: false},
	})
	assert.Equal(t, 0, hits)
}

func TestWebhookRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := NewWebhookChannel(config.WebhookConfig{Enabled: true, URL: server.URL})
	ch.retry.InitialDelay = time.Millisecond

	batch := MatchBatch{Strategy: "ofi", Matches: []models.ScreeningResult{matchResult("AAPL")}}
	require.NoError(t, ch.Send(context.Background(), batch))
	assert.Equal(t, int64(2), attempts.Load())
}

func TestWebhookGivesUpAfterMaxAttempts(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ch := NewWebhookChannel(config.WebhookConfig{Enabled: true, URL: server.URL})
	ch.retry.InitialDelay = time.Millisecond

	err := ch.Send(context.Background(), MatchBatch{Matches: []models.ScreeningResult{matchResult("AAPL")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int64(ch.retry.MaxAttempts), attempts.Load())
}

func TestFormatMatchBody(t *testing.T) {
	batch := MatchBatch{
		Strategy: "ofi",
		Stats:    models.ScreeningStats{Strategy: "ofi", Attempted: 3, Matched: 1, Duration: 2 * time.Second},
		Matches:  []models.ScreeningResult{matchResult("AAPL")},
	}

	body := formatMatchBody(batch)
	assert.Contains(t, body, "AAPL")
	assert.Contains(t, body, "strength=1.00")
	assert.Contains(t, body, "trend,oversold,bounce")
	assert.Contains(t, body, "25.0%")
	assert.True(t, strings.HasPrefix(body, "Strategy ofi matched 1 of 3 symbols"))
}
