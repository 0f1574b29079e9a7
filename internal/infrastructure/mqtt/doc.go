// Package mqtt provides MQTT client connectivity for apiconsole.
//
// Sensor units publish DHT22 samples to apiconsole/sensor/dth22/{unit};
// the server subscribes to those topics and announces every stored change
// on apiconsole/events/dth22/{created|updated}. A retained message on
// apiconsole/system/status (backed by a Last Will) tells other clients
// whether the server is online.
//
// The client auto-reconnects with backoff and restores its subscriptions.
// Handlers are wrapped with panic recovery.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllSensorReadings("dth22"), 1, handler)
package mqtt
