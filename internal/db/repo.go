package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"curie-dashboard/pkg"
)

// Repository assembles raw patient records from Postgres. Missing rows
// yield empty slices rather than errors; only query and scan failures
// are reported, and they surface as upstream fetch failures.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// recentCompositions caps how many composition entries the record
// carries; the normalizer needs the latest two for trend derivation.
const recentCompositions = 2

// recentMetrics caps the general metrics window. The latest dive record
// is fetched separately so this cap can never hide it.
const recentMetrics = 10

// FetchRecord loads the most recent readings for a patient and returns
// them as a loosely-shaped record, arrays ordered most recent first.
func (r *Repository) FetchRecord(ctx context.Context, patientID string) (*pkg.PatientRecord, error) {
	record := &pkg.PatientRecord{}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT weight, smm, pbf, phase_angle, vfl, total_body_water, bmr, recorded_on::text
         FROM compositions
         WHERE patient_id = $1
         ORDER BY recorded_on DESC, id DESC
         LIMIT $2`, patientID, recentCompositions)
	if err != nil {
		return nil, fmt.Errorf("fetch compositions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c pkg.Composition
		var bmr sql.NullInt64
		if err := rows.Scan(&c.Weight, &c.SMM, &c.PBF, &c.PhaseAngle, &c.VFL, &c.TotalBodyWater, &bmr, &c.Date); err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		if bmr.Valid {
			v := int(bmr.Int64)
			c.BMR = &v
		}
		record.Compositions = append(record.Compositions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch compositions: %w", err)
	}

	var bpm sql.NullInt64
	err = r.DB.QueryRowContext(ctx,
		`SELECT bpm FROM biometrics
         WHERE patient_id = $1
         ORDER BY recorded_at DESC
         LIMIT 1`, patientID).Scan(&bpm)
	switch {
	case err == sql.ErrNoRows:
		// no biometrics yet; the normalizer defaults the bpm
	case err != nil:
		return nil, fmt.Errorf("fetch biometrics: %w", err)
	case bpm.Valid:
		v := int(bpm.Int64)
		record.Biometrics = append(record.Biometrics, pkg.Biometric{BPM: &v})
	}

	metricRows, err := r.DB.QueryContext(ctx,
		`SELECT type, value, metadata FROM metrics
         WHERE patient_id = $1
         ORDER BY recorded_at DESC
         LIMIT $2`, patientID, recentMetrics)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics: %w", err)
	}
	defer metricRows.Close()
	for metricRows.Next() {
		m, err := scanMetric(metricRows.Scan)
		if err != nil {
			return nil, err
		}
		record.Metrics = append(record.Metrics, m)
	}
	if err := metricRows.Err(); err != nil {
		return nil, fmt.Errorf("fetch metrics: %w", err)
	}

	// The recent-metrics window can age the dive entry out once other
	// metric types accumulate, and the decompression flag must always
	// reflect the latest dive. Fetch that row separately and merge it.
	dive, err := r.fetchLatestDive(ctx, patientID)
	if err != nil {
		return nil, err
	}
	record.Metrics = mergeDiveMetric(record.Metrics, dive)

	return record, nil
}

// fetchLatestDive returns the most recent DEPTH-typed metric, or nil
// when the patient has no dive records.
func (r *Repository) fetchLatestDive(ctx context.Context, patientID string) (*pkg.Metric, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT type, value, metadata FROM metrics
         WHERE patient_id = $1 AND type = $2
         ORDER BY recorded_at DESC
         LIMIT 1`, patientID, pkg.MetricTypeDepth)
	m, err := scanMetric(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// scanMetric reads one metrics row, decoding the jsonb metadata column
// when present.
func scanMetric(scan func(dest ...interface{}) error) (pkg.Metric, error) {
	var m pkg.Metric
	var metadata []byte
	if err := scan(&m.Type, &m.Value, &metadata); err != nil {
		if err == sql.ErrNoRows {
			return m, err
		}
		return m, fmt.Errorf("scan metric: %w", err)
	}
	if len(metadata) > 0 {
		var md pkg.MetricMetadata
		if err := json.Unmarshal(metadata, &md); err != nil {
			return m, fmt.Errorf("decode metric metadata: %w", err)
		}
		m.Metadata = &md
	}
	return m, nil
}

// mergeDiveMetric appends the latest dive to a recent-metrics list that
// lost it to the window cap. The list stays most recent first, so the
// normalizer still finds the dive by scanning for the first DEPTH entry.
func mergeDiveMetric(metrics []pkg.Metric, dive *pkg.Metric) []pkg.Metric {
	if dive == nil {
		return metrics
	}
	for _, m := range metrics {
		if m.Type == pkg.MetricTypeDepth {
			return metrics
		}
	}
	return append(metrics, *dive)
}
