package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsServer_Endpoints(t *testing.T) {
	deps := &runtimeDependencies{
		storageCheck: func(context.Context) error { return nil },
		productCheck: func(context.Context) error { return errors.New("TRANSIENT_FAILURE") },
	}
	srv := httptest.NewServer(newMetricsServer(newHealthHandler(deps)).Handler)
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/metrics")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body)

	code, body = get("/healthz")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"status":"degraded"`)
	require.Contains(t, body, `"products"`)

	code, body = get("/readyz")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", body)

	code, body = get("/livez")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body)
}

func TestMetricsServer_StorageDownIsNotReady(t *testing.T) {
	deps := &runtimeDependencies{
		storageCheck: func(context.Context) error { return errors.New("connection refused") },
	}
	srv := httptest.NewServer(newMetricsServer(newHealthHandler(deps)).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestShutdownHTTP_NilServer(_ *testing.T) {
	shutdownHTTP(nil, 0, testLogger())
}
