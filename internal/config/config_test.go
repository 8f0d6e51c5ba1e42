package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPSCONSOLE_CONFIG", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 20.0, cfg.Payout.Base)
	require.Equal(t, 7.0, cfg.Payout.PerKm)
	require.Equal(t, 1.0, cfg.Payout.FreeRadiusKm)
	require.Equal(t, 120, cfg.Verification.WindowSeconds)
	require.Equal(t, "₹", cfg.UI.CurrencySymbol)
	require.Equal(t, 6.4, cfg.UI.SampleDistanceKm)
	require.Equal(t, "918434805818", cfg.Links.MessagingPhone)
	require.Equal(t, 0.01, cfg.Links.MapDelta)
	require.Empty(t, cfg.Metrics.Addr)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("OPSCONSOLE_PAYOUT_PER_KM", "9")
	t.Setenv("OPSCONSOLE_VERIFICATION_WINDOW_SECONDS", "30")
	t.Setenv("OPSCONSOLE_METRICS_ADDR", "127.0.0.1:9464")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9.0, cfg.Payout.PerKm)
	require.Equal(t, 30, cfg.Verification.WindowSeconds)
	require.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
}

func TestLoadFileAndSaveRoundTrip(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom", "console.toml")
	t.Setenv("OPSCONSOLE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Payout.Base = 25
	cfg.UI.Username = "rohini_user"
	require.NoError(t, Save(path, cfg))

	again, err := Load()
	require.NoError(t, err)
	require.Equal(t, 25.0, again.Payout.Base)
	require.Equal(t, "rohini_user", again.UI.Username)
	require.Equal(t, path, Path())
}

func TestLoadRejectsInvalid(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[verification]\nwindow_seconds = 0\n"), 0o600))
	t.Setenv("OPSCONSOLE_CONFIG", path)

	_, err := Load()
	require.ErrorContains(t, err, "window_seconds")
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[payout\nbase = "), 0o600))
	t.Setenv("OPSCONSOLE_CONFIG", path)

	_, err := Load()
	require.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)

	bad := cfg
	bad.Payout.PerKm = -1
	require.ErrorContains(t, bad.Validate(), "negative")

	bad = cfg
	bad.Links.MapDelta = 0
	require.ErrorContains(t, bad.Validate(), "map_delta")

	bad = cfg
	bad.UI.ListingFilter = "later"
	require.ErrorContains(t, bad.Validate(), "ui.listing_filter")

	good := cfg
	good.UI.ListingFilter = "Pending"
	require.NoError(t, good.Validate())
}
