// Package api implements the HTTP REST API and WebSocket server for apiconsole.
//
// This package provides:
//   - the DTH22 readings route (/api/dth22) with list, get, create and update
//   - a WebSocket hub broadcasting dth22.created and dth22.updated events
//   - health and Prometheus metrics endpoints
//   - middleware: request ID, logging, metrics, recovery, CORS, body limit, auth
//
// # CORS
//
// With api.cors.enabled (the default) every response carries the configured
// Access-Control-* headers and OPTIONS preflights are answered with 204.
// With it disabled no CORS headers are sent and OPTIONS is not routed (405).
//
// # Security
//
// When security.auth.enabled is set, the readings route and the WebSocket
// require an X-API-Key or a bearer JWT. Read-scoped tokens may only GET.
// Browsers cannot set headers on WebSocket upgrades, so the upgrade also
// accepts the token in an access_token query parameter.
//
// # Graceful Degradation
//
// MQTT and InfluxDB are optional. Without them the API still serves and
// stores readings; health reports them as disabled.
package api
