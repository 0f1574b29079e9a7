// Package influxdb provides InfluxDB connectivity for apiconsole.
//
// It wraps the official influxdb-client-go v2 library. Every stored DHT22
// reading is mirrored as a sensor_reading point so temperature and humidity
// history can be graphed outside the SQLite store.
//
// Writes are batched and non-blocking. Configure with:
//
//	influxdb:
//	  enabled: true
//	  url: "http://localhost:8086"
//	  org: "apiconsole"
//	  bucket: "dth22"
//	  batch_size: 100
//	  flush_interval: 10  # seconds
package influxdb
