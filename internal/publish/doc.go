// Package publish sends valid readings to an MQTT broker.
//
// Each reading is published as a report.Document on
//
//	<prefix>/<sender_id>/state
//
// with the configured QoS and retain flag. A retained availability message
// ("online"/"offline") is kept on <prefix>/status, with "offline" also set as
// the connection's last will.
//
// The energy monitor transmits every few seconds; MinInterval throttles
// publication per sender with a token bucket so slow consumers are not flooded.
// Throttled readings are dropped, not queued.
package publish
