package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/taskgov/internal/config"
	"github.com/fentz26/taskgov/internal/controlplane"
	"github.com/fentz26/taskgov/internal/logging"
	"github.com/fentz26/taskgov/internal/report"
)

func startServer(t *testing.T, snapshotJSON string) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0644))

	svc := controlplane.NewService(nil, nil, controlplane.Settings{
		SnapshotPath: path,
		OutputPath:   filepath.Join(dir, "index.html"),
		Options:      report.DefaultOptions(),
	}, logging.Nop())
	srv := httptest.NewServer(controlplane.NewServer(svc, "").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:7467", serverURL(config.DefaultListenAddr))
	assert.Equal(t, "http://example.test", serverURL("http://example.test/"))
}

func TestStatus_Violations(t *testing.T) {
	srv := startServer(t, threeDoing)

	out, err := execute(t, "status", "--config-dir", t.TempDir(), "--addr", srv.URL)
	require.ErrorIs(t, err, ErrViolations)
	assert.Contains(t, out, "history disabled")
	assert.Regexp(t, `Total\s+3/3`, out)
	assert.Contains(t, out, "WIP limit exceeded")
}

func TestStatus_Compliant(t *testing.T) {
	srv := startServer(t, oneReady)

	out, err := execute(t, "status", "--config-dir", t.TempDir(), "--addr", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Compliant.")
}
