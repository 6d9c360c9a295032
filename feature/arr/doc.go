// Package arr forwards unmatched titles to Radarr and Sonarr.
//
// Both services share the v3 API surface for quality profiles, root folders and
// tags, handled by the common client. Radarr adds movies by TMDb id, Sonarr adds
// series by TVDB id. Forwarder implements reconcile.AcquisitionForwarder and routes
// each request by media type.
package arr
