// Package console is a client for exploring arbitrary JSON REST endpoints.
//
// Given a ConnectionConfig (URL plus optional API key and bearer token) it can:
//
//   - probe which HTTP verbs the endpoint accepts (Client.Probe)
//   - fetch the endpoint and normalise any JSON shape into table rows
//     (Client.FetchAndNormalize)
//   - create, update and delete records (Client.Create, Client.Update,
//     Client.Delete)
//
// Session layers connection state on top of Client: a connected flag, the
// last probe results, the current rows, a single busy flag, and user-facing
// notices delivered to a Notifier.
//
// Rows are *Object values, which keep the key order of the JSON document so
// table columns appear in the order the server sent them.
package console
