package dth22

import "time"

// Reading is one stored sensor sample.
type Reading struct {
	ID         int64     `json:"id" yaml:"id"`
	UnitName   string    `json:"unit_name" yaml:"unit_name"`
	Suhu       float64   `json:"suhu" yaml:"suhu"`
	Kelembapan float64   `json:"kelembapan" yaml:"kelembapan"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewReading holds the fields required to create a reading.
type NewReading struct {
	UnitName   string
	Suhu       float64
	Kelembapan float64
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	UnitName   *string
	Suhu       *float64
	Kelembapan *float64
}

// EventType names a change to the reading set.
type EventType string

const (
	EventCreated EventType = "dth22.created"
	EventUpdated EventType = "dth22.updated"
)

// Event source values.
const (
	SourceAPI  = "api"
	SourceMQTT = "mqtt"
)

// Event is emitted by Service after a successful write.
type Event struct {
	Type    EventType `json:"type" yaml:"type"`
	Source  string    `json:"source" yaml:"source"`
	Reading Reading   `json:"reading" yaml:"reading"`
}
