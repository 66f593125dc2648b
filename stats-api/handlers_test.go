package main

import (
	"bytes"
	"encoding/json"
	"eventhub/stats"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := OpenStore(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer((&server{store: store}).routes())
	t.Cleanup(srv.Close)
	return srv
}

func postHit(t *testing.T, srv *httptest.Server, hit stats.EndpointHit) *http.Response {
	t.Helper()
	body, err := json.Marshal(hit)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/hit", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestRecordHit(t *testing.T) {
	srv := newTestServer(t)

	t.Run("valid hit", func(t *testing.T) {
		resp := postHit(t, srv, stats.EndpointHit{
			App: "eventhub", URI: "/events/1", IP: "10.0.0.1", Timestamp: "2024-05-10 12:00:00",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := postHit(t, srv, stats.EndpointHit{URI: "/events/1", Timestamp: "2024-05-10 12:00:00"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		resp := postHit(t, srv, stats.EndpointHit{
			App: "eventhub", URI: "/events/1", IP: "10.0.0.1", Timestamp: "yesterday",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetStats(t *testing.T) {
	srv := newTestServer(t)

	hits := []stats.EndpointHit{
		{App: "eventhub", URI: "/events/1", IP: "10.0.0.1", Timestamp: "2024-05-10 12:00:00"},
		{App: "eventhub", URI: "/events/1", IP: "10.0.0.1", Timestamp: "2024-05-10 12:05:00"},
		{App: "eventhub", URI: "/events/1", IP: "10.0.0.2", Timestamp: "2024-05-10 12:10:00"},
		{App: "eventhub", URI: "/events/2", IP: "10.0.0.1", Timestamp: "2024-05-10 13:00:00"},
		{App: "eventhub", URI: "/events/1", IP: "10.0.0.3", Timestamp: "2024-06-01 09:00:00"},
	}
	for _, hit := range hits {
		resp := postHit(t, srv, hit)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	get := func(t *testing.T, query string) []stats.EndpointStats {
		t.Helper()
		resp, err := http.Get(srv.URL + "/stats?" + query)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result []stats.EndpointStats
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return result
	}

	window := "start=2024-05-01+00%3A00%3A00&end=2024-05-31+00%3A00%3A00"

	t.Run("raw counts within the window", func(t *testing.T) {
		result := get(t, window)
		require.Len(t, result, 2)
		assert.Equal(t, stats.EndpointStats{App: "eventhub", URI: "/events/1", Hits: 3}, result[0])
		assert.Equal(t, stats.EndpointStats{App: "eventhub", URI: "/events/2", Hits: 1}, result[1])
	})

	t.Run("unique counts each ip once", func(t *testing.T) {
		result := get(t, window+"&unique=true&uris=%2Fevents%2F1")
		require.Len(t, result, 1)
		assert.Equal(t, 2, result[0].Hits)
	})

	t.Run("window excludes later hits", func(t *testing.T) {
		result := get(t, "start=2024-06-01+00%3A00%3A00&end=2024-06-30+00%3A00%3A00")
		require.Len(t, result, 1)
		assert.Equal(t, 1, result[0].Hits)
	})

	t.Run("malformed window", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/stats?start=whenever&end=2024-06-30+00%3A00%3A00")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
