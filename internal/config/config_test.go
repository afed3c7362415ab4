package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"orderpulse/internal/testutil"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := testutil.WriteRawFile(t, t.TempDir(), "config.yaml",
		"data_dir: /srv/feeds\ntop_spenders:\n  days: 90\n  limit: 5\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/feeds", cfg.DataDir)
	require.Equal(t, 90, cfg.TopSpenders.Days)
	require.Equal(t, 5, cfg.TopSpenders.Limit)
	// Untouched fields keep their defaults.
	require.Equal(t, "orderpulse.db", cfg.DatabasePath)
	require.Equal(t, BackendLocal, cfg.Artifacts.Backend)
}

func TestLoad_RemoteBackend(t *testing.T) {
	path := testutil.WriteRawFile(t, t.TempDir(), "config.yaml",
		"artifacts:\n  backend: remote\n  endpoint: http://objects.internal:9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, BackendRemote, cfg.Artifacts.Backend)
	require.Equal(t, "http://objects.internal:9000", cfg.Artifacts.Endpoint)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "artifacts:\n  backend: s3\n"},
		{"remote without endpoint", "artifacts:\n  backend: remote\n"},
		{"non-positive days", "top_spenders:\n  days: 0\n  limit: 10\n"},
		{"non-positive limit", "top_spenders:\n  days: 30\n  limit: -1\n"},
		{"malformed yaml", "data_dir: [unclosed\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := testutil.WriteRawFile(t, t.TempDir(), "config.yaml", tc.yaml)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}
