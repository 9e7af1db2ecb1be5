package pkg

import "time"

// Role describes who authored a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry in a chat session.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

// Composition is one body-composition record from a bioimpedance scan.
// Every field is optional; the upstream record may carry any subset.
type Composition struct {
	Weight         *float64 `json:"weight,omitempty"`
	SMM            *float64 `json:"smm,omitempty"`
	PBF            *float64 `json:"pbf,omitempty"`
	PhaseAngle     *float64 `json:"phaseAngle,omitempty"`
	VFL            *float64 `json:"vfl,omitempty"`
	TotalBodyWater *float64 `json:"totalBodyWater,omitempty"`
	BMR            *int     `json:"bmr,omitempty"`
	Date           string   `json:"date,omitempty"`
}

// Biometric is one continuous-monitoring reading (Garmin sync).
type Biometric struct {
	BPM *int `json:"bpm,omitempty"`
}

// MetricMetadata carries activity-specific flags attached to a metric.
type MetricMetadata struct {
	DecompressionViolated *bool `json:"decompressionViolated,omitempty"`
}

// Metric is one typed activity measurement, e.g. a dive depth record.
type Metric struct {
	Type     string          `json:"type"`
	Value    *float64        `json:"value,omitempty"`
	Metadata *MetricMetadata `json:"metadata,omitempty"`
}

// MetricTypeDepth tags dive-depth metrics in the record's metrics array.
const MetricTypeDepth = "DEPTH"

// PatientRecord is the raw, loosely-shaped patient payload. Arrays are
// ordered most recent first; any array or field may be absent.
type PatientRecord struct {
	Compositions []Composition `json:"compositions,omitempty"`
	Biometrics   []Biometric   `json:"biometrics,omitempty"`
	Metrics      []Metric      `json:"metrics,omitempty"`
}

// TelemetrySnapshot is the fully-defaulted point-in-time view of the
// patient's readings. Every field is always populated; consumers never
// have to handle a missing value.
type TelemetrySnapshot struct {
	BPM            int     `json:"bpm"`
	Weight         float64 `json:"weight"`
	MuscleMass     float64 `json:"muscleMass"`
	PBF            float64 `json:"pbf"`
	PhaseAngle     float64 `json:"phaseAngle"`
	MaxDepth       float64 `json:"maxDepth"`
	IsDecoViolated bool    `json:"isDecoViolated"`
	BodyWater      float64 `json:"bodyWater"`
	VisceralFat    float64 `json:"visceralFat"`
	BMR            int     `json:"bmr"`
}

// Trend is the derived change of one metric versus the previous reading.
// A nil *Trend means no prior data, which is distinct from "no change".
type Trend struct {
	Value   float64 `json:"value"`
	IsUp    bool    `json:"isUp"`
	RawDiff float64 `json:"rawDiff"`
}

// SyncStatus reports whether telemetry reflects a live upstream record
// or the defaulted fallback after a fetch failure.
type SyncStatus string

const (
	SyncLive     SyncStatus = "live"
	SyncDegraded SyncStatus = "degraded"
)

// TelemetryReport is the display-layer view: snapshot, per-metric trends
// and the emergency flag, which is derived from the snapshot alone.
type TelemetryReport struct {
	Telemetry   TelemetrySnapshot `json:"telemetry"`
	Trends      map[string]*Trend `json:"trends"`
	SyncStatus  SyncStatus        `json:"sync_status"`
	IsEmergency bool              `json:"isEmergency"`
}

// ChatMessage is the role/content pair carried on the chat wire.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages    []ChatMessage     `json:"messages"`
	Telemetry   TelemetrySnapshot `json:"telemetry"`
	IsEmergency bool              `json:"isEmergency,omitempty"`
}

// ChatResponse carries the assistant reply, or the fixed fallback
// message when the completion call failed.
type ChatResponse struct {
	Content string `json:"content"`
}
