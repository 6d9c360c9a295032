// Package middleware groups the fiber middleware of the collection manager API.
//
// The daemon registers them in order: rayid first, then request logging, then auth.
//
//   - rayid: keeps an incoming X-Ray-ID header or generates a UUID, stores it in
//     the "ray_id" local for logger.WithRayID and echoes it in the response.
//   - auth: requires the X-API-Key header (or an api_key query parameter) to equal
//     server.api_key. An empty key disables the check. Paths in the skip list,
//     server.PublicPaths (/health), are always served so health checks need no key.
package middleware
