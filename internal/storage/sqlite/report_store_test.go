package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
)

func setupStore(t *testing.T) *ReportStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportStore(db)
}

func storedReport() *drift.Report {
	return &drift.Report{
		RunID:           "aaaa-bbbb",
		DriftDetected:   true,
		DriftShare:      0.75,
		DriftedFeatures: []string{"brightness_mean", "brightness_std", "contrast"},
		PerFeature: map[string]drift.FeatureComparisonResult{
			"brightness_mean": {Feature: "brightness_mean", Status: drift.StatusOK, Drifted: true, Statistic: 1.0, PValue: 0.0001, Threshold: 0.05},
			"sharpness":       {Feature: "sharpness", Status: drift.StatusOK, Drifted: false, Statistic: 0.1, PValue: 0.9, Threshold: 0.05},
		},
		ReferenceCount: 25,
		CurrentCount:   24,
		GeneratedAt:    time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetReportRoundTrip(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	want := storedReport()
	require.NoError(t, store.SaveReport(want))

	got, err := store.GetReport("aaaa-bbbb")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveReportDuplicateRunIDFails(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	require.NoError(t, store.SaveReport(storedReport()))
	assert.Error(t, store.SaveReport(storedReport()))
}

func TestGetReportMissing(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	_, err := store.GetReport("nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRecentNewestFirst(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	for i, id := range []string{"first", "second", "third"} {
		r := storedReport()
		r.RunID = id
		r.GeneratedAt = time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.SaveReport(r))
	}

	reports, err := store.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "third", reports[0].RunID)
	assert.Equal(t, "second", reports[1].RunID)
}

func TestSaveSkippedReportEmptyFeatures(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	r := drift.NewSkippedReport(3, 40)
	require.NoError(t, store.SaveReport(r))

	got, err := store.GetReport(r.RunID)
	require.NoError(t, err)
	assert.True(t, got.Skipped)
	assert.Empty(t, got.DriftedFeatures)
	assert.NotNil(t, got.DriftedFeatures)
}

func TestOpenAppliesMigrationsIdempotently(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening an already-migrated database is a no-op
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM drift_reports").Scan(&count))
	assert.Zero(t, count)
}
