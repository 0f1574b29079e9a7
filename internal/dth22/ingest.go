package dth22

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
	"github.com/nerrad567/apiconsole/internal/infrastructure/mqtt"
	"github.com/nerrad567/apiconsole/internal/metrics"
)

const ingestTimeout = 5 * time.Second

// Subscriber is satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Ingestor stores readings that sensors publish over MQTT.
//
// Sensors publish {"suhu": 27.5, "kelembapan": 61} to
// apiconsole/sensor/dth22/{unit}. The unit in the topic is used unless the
// payload carries its own unit_name.
type Ingestor struct {
	svc    *Service
	logger *logging.Logger
}

// NewIngestor creates an Ingestor writing through svc.
func NewIngestor(svc *Service, logger *logging.Logger) *Ingestor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Ingestor{svc: svc, logger: logger.With("component", "dth22-ingest")}
}

// Start subscribes to every dth22 sensor topic.
func (i *Ingestor) Start(sub Subscriber, qos byte) error {
	topic := mqtt.Topics{}.AllSensorReadings(Kind)
	if err := sub.Subscribe(topic, qos, i.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	i.logger.Info("ingesting sensor readings", "topic", topic)
	return nil
}

// handle is HandleMessage plus failure accounting.
func (i *Ingestor) handle(topic string, payload []byte) error {
	err := i.HandleMessage(topic, payload)
	if err != nil {
		metrics.IngestFailuresTotal.WithLabelValues(failureReason(err)).Inc()
	}
	return err
}

// failureReason labels an ingest error for metrics.
func failureReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "invalid"
	}
	return "storage"
}

// HandleMessage validates and stores one sensor payload.
func (i *Ingestor) HandleMessage(topic string, payload []byte) error {
	unit, ok := mqtt.Topics{}.UnitFromSensorTopic(Kind, topic)
	if !ok {
		return invalid("topic", fmt.Sprintf("unexpected topic %q", topic))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return invalid("", MsgInvalidBody)
	}
	if isBlank(fields[fieldUnitName]) {
		fields[fieldUnitName], _ = json.Marshal(unit) //nolint:errcheck // string marshal
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("re-encoding payload: %w", err)
	}
	in, err := ParseCreate(merged)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	if _, err := i.svc.Create(ctx, in, SourceMQTT); err != nil {
		return fmt.Errorf("storing reading from %s: %w", unit, err)
	}
	return nil
}
