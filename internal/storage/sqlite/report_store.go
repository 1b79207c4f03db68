package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
)

// ReportStore provides persistence for drift report history.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore creates a ReportStore over an opened database.
func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// SaveReport persists one report. If the report has no run ID a UUID is
// generated. Saving the same run ID twice is an error; reports are
// immutable once created.
func (s *ReportStore) SaveReport(r *drift.Report) error {
	runID := r.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	perFeature, err := json.Marshal(r.PerFeature)
	if err != nil {
		return fmt.Errorf("encoding per-feature results: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO drift_reports (
				run_id, drift_detected, drift_share, drifted_features,
				per_feature_json, skipped, reference_count, current_count,
				generated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, boolToInt(r.DriftDetected), r.DriftShare,
			strings.Join(r.DriftedFeatures, ","), string(perFeature),
			boolToInt(r.Skipped), r.ReferenceCount, r.CurrentCount,
			r.GeneratedAt.UnixNano(),
		)
		return err
	})
}

// GetReport loads one report by run ID. Returns sql.ErrNoRows when absent.
func (s *ReportStore) GetReport(runID string) (*drift.Report, error) {
	row := s.db.QueryRow(`
		SELECT run_id, drift_detected, drift_share, drifted_features,
		       per_feature_json, skipped, reference_count, current_count,
		       generated_at
		FROM drift_reports WHERE run_id = ?`, runID)
	return scanReport(row)
}

// ListRecent returns up to limit reports, newest first.
func (s *ReportStore) ListRecent(limit int) ([]*drift.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, drift_detected, drift_share, drifted_features,
		       per_feature_json, skipped, reference_count, current_count,
		       generated_at
		FROM drift_reports ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*drift.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*drift.Report, error) {
	var (
		r           drift.Report
		detected    int
		skipped     int
		drifted     string
		perFeature  string
		generatedAt int64
	)
	err := row.Scan(&r.RunID, &detected, &r.DriftShare, &drifted,
		&perFeature, &skipped, &r.ReferenceCount, &r.CurrentCount, &generatedAt)
	if err != nil {
		return nil, err
	}

	r.DriftDetected = detected != 0
	r.Skipped = skipped != 0
	if drifted == "" {
		r.DriftedFeatures = []string{}
	} else {
		r.DriftedFeatures = strings.Split(drifted, ",")
	}
	if err := json.Unmarshal([]byte(perFeature), &r.PerFeature); err != nil {
		return nil, fmt.Errorf("decoding per-feature results: %w", err)
	}
	r.GeneratedAt = time.Unix(0, generatedAt).UTC()
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
