package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/flowmeter"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/tempframe"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "sensor_data.db"))
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return d
}

func TestNewDBAppliesMigrations(t *testing.T) {
	d := newTestDB(t)

	version, dirty, err := d.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty, "fresh database should not be dirty")
	assert.Equal(t, uint(1), version)

	// opening an already-migrated database is a no-op
	path := filepath.Join(t.TempDir(), "sensor_data.db")
	first, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	second, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestRecordFlowRoundTrip(t *testing.T) {
	d := newTestDB(t)

	rec := flowmeter.Record{
		DeviceTime: "2024-06-01T12:34:56+07:00",
		CapturedAt: time.Date(2024, time.June, 1, 5, 35, 0, 0, time.UTC),
		Flow:       1.234,
		Velocity:   0.567,
	}
	require.NoError(t, d.RecordFlow(rec))

	got, err := d.RecentFlow(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.DeviceTime, got[0].DeviceTime)
	assert.Equal(t, rec.Flow, got[0].Flow)
	assert.Equal(t, rec.Velocity, got[0].Velocity)
	assert.True(t, got[0].CapturedAt.Equal(rec.CapturedAt))
}

func TestRecordTemperatureRoundTrip(t *testing.T) {
	d := newTestDB(t)

	rec := tempframe.Record{
		CapturedAt: time.Date(2024, time.June, 1, 5, 0, 0, 0, time.UTC),
		T1:         36.0,
		T2:         49.6,
	}
	require.NoError(t, d.RecordTemperature(rec))

	got, err := d.RecentTemperatures(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 36.0, got[0].T1)
	assert.Equal(t, 49.6, got[0].T2)
	assert.True(t, got[0].CapturedAt.Equal(rec.CapturedAt))
}

func TestRecentOrderingAndLimit(t *testing.T) {
	d := newTestDB(t)

	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.RecordTemperature(tempframe.Record{
			CapturedAt: base.Add(time.Duration(i) * time.Minute),
			T1:         20 + float64(i),
			T2:         30 + float64(i),
		}))
	}

	got, err := d.RecentTemperatures(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 24.0, got[0].T1, "newest record first")
	assert.Equal(t, 22.0, got[2].T1)
}

func TestRecentEmptyTables(t *testing.T) {
	d := newTestDB(t)

	flows, err := d.RecentFlow(10)
	require.NoError(t, err)
	assert.Empty(t, flows)

	temps, err := d.RecentTemperatures(10)
	require.NoError(t, err)
	assert.Empty(t, temps)
}
