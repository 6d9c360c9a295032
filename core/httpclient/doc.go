// Package httpclient is the JSON HTTP client shared by the media server, provider,
// acquisition and notification integrations.
//
// Requests are retried with exponential backoff (github.com/avast/retry-go) on network
// failures, 429 and 5xx responses. Other non-2xx responses surface immediately as
// *StatusError so callers can branch on the status code. Credentials passed as query
// parameters are redacted from errors and logs.
package httpclient
