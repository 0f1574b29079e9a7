package dth22

import (
	"context"
	"strings"
	"time"

	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
	"github.com/nerrad567/apiconsole/internal/infrastructure/mqtt"
)

// Kind is the sensor kind used in MQTT topics and time-series tags.
const Kind = "dth22"

// EventPublisher is satisfied by *mqtt.Client.
type EventPublisher interface {
	PublishJSON(topic string, v any) error
}

// PublishEvents returns a Listener that announces every event on
// apiconsole/events/dth22/{created|updated}.
func PublishEvents(pub EventPublisher, logger *logging.Logger) Listener {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(_ context.Context, ev Event) {
		topic := mqtt.Topics{}.Event(Kind, ev.Action())
		if err := pub.PublishJSON(topic, ev); err != nil {
			logger.Warn("publishing reading event failed",
				"topic", topic,
				"id", ev.Reading.ID,
				"error", err,
			)
		}
	}
}

// PointWriter is satisfied by *influxdb.Client.
type PointWriter interface {
	WriteReading(kind, unit string, values map[string]float64, ts time.Time)
}

// RecordPoints returns a Listener that mirrors each stored reading as a
// time-series point stamped with its updated_at time.
func RecordPoints(w PointWriter) Listener {
	return func(_ context.Context, ev Event) {
		r := ev.Reading
		w.WriteReading(Kind, r.UnitName, map[string]float64{
			fieldSuhu:       r.Suhu,
			fieldKelembapan: r.Kelembapan,
		}, r.UpdatedAt)
	}
}

// Action is the event type without its "dth22." prefix.
func (e Event) Action() string {
	return strings.TrimPrefix(string(e.Type), Kind+".")
}
