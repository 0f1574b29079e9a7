package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement and tag names for sensor readings.
const (
	MeasurementSensor = "sensor_reading"
	TagKind           = "kind"
	TagUnit           = "unit_name"
)

// WriteReading records one sensor sample as a point in the sensor_reading
// measurement, tagged by sensor kind and unit. The write is batched and
// non-blocking; failures surface through SetOnError.
//
// Parameters:
//   - kind: Sensor kind tag, e.g. "dth22"
//   - unit: Unit tag for the values
//   - values: Field name to value
//   - ts: Sample time
//
//	client.WriteReading("dth22", "kamar-1", map[string]float64{"suhu": 27.5, "kelembapan": 61}, ts)
func (c *Client) WriteReading(kind, unit string, values map[string]float64, ts time.Time) {
	if !c.IsConnected() || len(values) == 0 {
		return
	}

	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementSensor,
		map[string]string{TagKind: kind, TagUnit: unit},
		fields,
		ts,
	))
}

// WritePoint writes a custom point stamped with the current time.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
