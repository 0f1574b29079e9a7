package mqtt

import (
	"fmt"
	"strings"
)

// Topic namespace roots.
const (
	TopicPrefix       = "apiconsole"
	TopicPrefixSensor = "apiconsole/sensor"
	TopicPrefixEvents = "apiconsole/events"
	TopicPrefixSystem = "apiconsole/system"
)

// Topics builds MQTT topic strings.
//
//	topics := mqtt.Topics{}
//	sub := topics.AllSensorReadings("dth22") // apiconsole/sensor/dth22/+
type Topics struct{}

// SensorReading is where a sensor unit publishes raw samples.
// Format: apiconsole/sensor/{kind}/{unit}
func (Topics) SensorReading(kind, unit string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixSensor, kind, unit)
}

// AllSensorReadings matches SensorReading for every unit of a kind.
func (Topics) AllSensorReadings(kind string) string {
	return fmt.Sprintf("%s/%s/+", TopicPrefixSensor, kind)
}

// Event is where stored-data events are announced.
// Format: apiconsole/events/{kind}/{action}, e.g. apiconsole/events/dth22/created
func (Topics) Event(kind, action string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixEvents, kind, action)
}

// AllEvents matches every event topic.
func (Topics) AllEvents() string {
	return TopicPrefixEvents + "/#"
}

// SystemStatus carries the retained online/offline status and the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// UnitFromSensorTopic extracts {unit} from apiconsole/sensor/{kind}/{unit}.
// It returns false when topic is not a sensor topic of that kind.
func (Topics) UnitFromSensorTopic(kind, topic string) (string, bool) {
	prefix := TopicPrefixSensor + "/" + kind + "/"
	unit, found := strings.CutPrefix(topic, prefix)
	if !found || unit == "" || strings.Contains(unit, "/") {
		return "", false
	}
	return unit, true
}
