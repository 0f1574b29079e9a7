// Package auth authenticates callers of the apiconsole HTTP API.
//
// Two credentials are accepted:
//   - a static API key, sent as X-API-Key, which grants the write scope
//   - an HS256 JWT bearer token carrying a scope claim (read or write)
//
// Scopes map to HTTP methods: read allows GET, HEAD and OPTIONS; write allows
// every method.
package auth
