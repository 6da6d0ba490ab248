package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRestyClientGetSendsQueryAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "acme co", r.URL.Query().Get("q"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Get(context.Background(), server.URL, map[string]string{"q": "acme co"}, map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, resp.StatusCode())
	require.Equal(t, "short and stout", string(resp.Body()))
	require.Equal(t, "text/plain", resp.Header().Get("Content-Type"))
}

func TestRestyClientGetHonorsCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRestyClient(0).Get(ctx, server.URL, nil, nil)
	require.Error(t, err)
}
