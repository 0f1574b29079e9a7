// Package dth22 stores and serves DHT22 sensor readings.
//
// A reading records a unit name, a temperature (suhu, °C) and a relative
// humidity (kelembapan, %). Readings arrive through the REST route in
// internal/api or, when MQTT is enabled, from sensors publishing to
// apiconsole/sensor/dth22/{unit}.
//
// # Architecture
//
//	┌──────────────┐    ┌──────────────┐    ┌──────────────────┐
//	│  REST / MQTT │───▶│   Service    │───▶│    Repository    │
//	│ (api/ingest) │    │ (service.go) │    │ (repository.go)  │
//	└──────────────┘    └──────┬───────┘    └──────────────────┘
//	                           │ Event
//	                           ▼
//	            WebSocket hub, MQTT publish, InfluxDB, metrics
//
// Request bodies are validated by ParseCreate and ParseUpdate, which
// produce the Indonesian client-facing messages the route returns.
package dth22
