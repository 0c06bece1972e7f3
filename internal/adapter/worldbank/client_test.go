package worldbank

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_CurrentGDP_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/country/stormland/indicator/NY.GDP.MKTP.CD")
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("mrnev"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`[{"page":1,"total":1},[{"value":4.2e11,"date":"2023"}]]`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	gdp, err := c.CurrentGDP(context.Background(), "Stormland")
	require.NoError(t, err)
	assert.Equal(t, 4.2e11, gdp)
}

func TestClient_CurrentGDP_NullValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"page":1},[{"value":null,"date":"2023"}]]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentGDP(context.Background(), "Gapland")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gdp data")
}

func TestClient_CurrentGDP_UnknownCountry(t *testing.T) {
	// The API signals an unknown country with a one-element envelope
	// carrying an error message.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"message":[{"id":"120","value":"Invalid value"}]}]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentGDP(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gdp data")
}

func TestClient_CurrentGDP_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentGDP(context.Background(), "Stormland")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_CurrentGDP_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).CurrentGDP(ctx, "Stormland")
	require.Error(t, err)
}
