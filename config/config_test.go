package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"file::memory:\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "littlelemon_token", cfg.Auth.CookieName)
	assert.Equal(t, "/accounts/login/", cfg.Auth.LoginURL)
	assert.Equal(t, 10, cfg.Booking.DefaultSlot)
	assert.Equal(t, 0, cfg.Booking.FirstSlot)
	assert.Equal(t, 23, cfg.Booking.LastSlot)
	assert.Equal(t, time.Duration(0), cfg.Booking.AvailabilityCacheTTL)
	assert.False(t, cfg.Booking.ExposeAllBookings)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.False(t, cfg.Push.Enabled())
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoad_ReadsFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  driver: sqlite
  dsn: "file::memory:"
auth:
  jwt_secret: from-file
booking:
  first_slot: 10
  last_slot: 22
  availability_cache_seconds: 7
  expose_all_bookings: true
push:
  vapid_public_key: pub
  vapid_private_key: priv
`)
	t.Setenv("LITTLELEMON_JWT_SECRET", "from-env")
	t.Setenv("LITTLELEMON_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 10, cfg.Booking.FirstSlot)
	assert.Equal(t, 22, cfg.Booking.LastSlot)
	assert.Equal(t, 7*time.Second, cfg.Booking.AvailabilityCacheTTL)
	assert.True(t, cfg.Booking.ExposeAllBookings)
	assert.True(t, cfg.Push.Enabled())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BookingSlots(t *testing.T) {
	testCases := []struct {
		name            string
		booking         string
		expectedDefault int
		expectedFirst   int
		expectedLast    int
	}{
		{name: "Unset", booking: "  expose_all_bookings: false\n", expectedDefault: 10, expectedFirst: 0, expectedLast: 23},
		{name: "Midnight default", booking: "  default_slot: 0\n", expectedDefault: 0, expectedFirst: 0, expectedLast: 23},
		{name: "Midnight only window", booking: "  first_slot: 0\n  last_slot: 0\n", expectedDefault: 0, expectedFirst: 0, expectedLast: 0},
		{name: "Only last slot", booking: "  last_slot: 14\n", expectedDefault: 10, expectedFirst: 0, expectedLast: 14},
		{name: "Default outside window", booking: "  default_slot: 9\n  first_slot: 11\n  last_slot: 22\n", expectedDefault: 11, expectedFirst: 11, expectedLast: 22},
		{name: "Inverted window", booking: "  first_slot: 20\n  last_slot: 12\n", expectedDefault: 10, expectedFirst: 0, expectedLast: 23},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "booking:\n"+tc.booking))
			require.NoError(t, err)

			assert.Equal(t, tc.expectedDefault, cfg.Booking.DefaultSlot)
			assert.Equal(t, tc.expectedFirst, cfg.Booking.FirstSlot)
			assert.Equal(t, tc.expectedLast, cfg.Booking.LastSlot)
		})
	}
}
