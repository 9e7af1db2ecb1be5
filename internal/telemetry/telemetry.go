package telemetry

import (
	"math"

	"curie-dashboard/pkg"
)

// Defaults applied when the upstream record is partial or absent. These
// are the only place fallback values live; downstream code never
// re-implements them.
const (
	DefaultBPM         = 62
	DefaultWeight      = 67.5
	DefaultMuscleMass  = 31.3
	DefaultPBF         = 18.2
	DefaultPhaseAngle  = 7.5
	DefaultBodyWater   = 40.5
	DefaultVisceralFat = 5
	DefaultBMR         = 1562
	DefaultMaxDepth    = 0
)

// Normalize converts a raw patient record into a fully-populated
// snapshot. Missing arrays, entries or fields fall back to the defaults
// above; a nil record yields the all-default snapshot.
func Normalize(record *pkg.PatientRecord) pkg.TelemetrySnapshot {
	snap := pkg.TelemetrySnapshot{
		BPM:         DefaultBPM,
		Weight:      DefaultWeight,
		MuscleMass:  DefaultMuscleMass,
		PBF:         DefaultPBF,
		PhaseAngle:  DefaultPhaseAngle,
		MaxDepth:    DefaultMaxDepth,
		BodyWater:   DefaultBodyWater,
		VisceralFat: DefaultVisceralFat,
		BMR:         DefaultBMR,
	}
	if record == nil {
		return snap
	}
	if len(record.Compositions) > 0 {
		curr := record.Compositions[0]
		if curr.Weight != nil {
			snap.Weight = *curr.Weight
		}
		if curr.SMM != nil {
			snap.MuscleMass = *curr.SMM
		}
		if curr.PBF != nil {
			snap.PBF = *curr.PBF
		}
		if curr.PhaseAngle != nil {
			snap.PhaseAngle = *curr.PhaseAngle
		}
		if curr.TotalBodyWater != nil {
			snap.BodyWater = *curr.TotalBodyWater
		}
		if curr.VFL != nil {
			snap.VisceralFat = *curr.VFL
		}
		if curr.BMR != nil {
			snap.BMR = *curr.BMR
		}
	}
	if len(record.Biometrics) > 0 && record.Biometrics[0].BPM != nil {
		snap.BPM = *record.Biometrics[0].BPM
	}
	if dive := latestDive(record.Metrics); dive != nil {
		if dive.Value != nil {
			snap.MaxDepth = *dive.Value
		}
		if dive.Metadata != nil && dive.Metadata.DecompressionViolated != nil {
			snap.IsDecoViolated = *dive.Metadata.DecompressionViolated
		}
	}
	return snap
}

// latestDive returns the first DEPTH-typed metric, matching the
// most-recent-first ordering of the record's arrays.
func latestDive(metrics []pkg.Metric) *pkg.Metric {
	for i := range metrics {
		if metrics[i].Type == pkg.MetricTypeDepth {
			return &metrics[i]
		}
	}
	return nil
}

// ComputeTrend derives the change of a metric between two consecutive
// readings. It returns nil when previous is zero or absent: a true zero
// reading and "no prior data" are deliberately conflated, preserving the
// behavior of the original dashboard.
func ComputeTrend(current, previous float64) *pkg.Trend {
	if previous == 0 {
		return nil
	}
	diff := current - previous
	return &pkg.Trend{
		Value:   math.Abs(math.Round(diff*10) / 10),
		IsUp:    diff > 0,
		RawDiff: diff,
	}
}

// Trends computes per-metric trend indicators against the previous
// composition entry. Metrics without prior data are simply absent from
// the map.
func Trends(record *pkg.PatientRecord) map[string]*pkg.Trend {
	trends := make(map[string]*pkg.Trend)
	if record == nil || len(record.Compositions) < 2 {
		return trends
	}
	snap := Normalize(record)
	prev := record.Compositions[1]
	pairs := []struct {
		name    string
		current float64
		prev    *float64
	}{
		{"weight", snap.Weight, prev.Weight},
		{"muscleMass", snap.MuscleMass, prev.SMM},
		{"pbf", snap.PBF, prev.PBF},
		{"phaseAngle", snap.PhaseAngle, prev.PhaseAngle},
	}
	for _, p := range pairs {
		if p.prev == nil {
			continue
		}
		if t := ComputeTrend(p.current, *p.prev); t != nil {
			trends[p.name] = t
		}
	}
	return trends
}
