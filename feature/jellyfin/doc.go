// Package jellyfin talks to the Jellyfin REST API.
//
// Client implements reconcile.LibraryReader, reconcile.CollectionStore and
// reconcile.MetadataUpdater. Libraries are resolved by name through
// /Library/VirtualFolders and listed page by page with their provider ids.
// Collections are BoxSet items looked up by exact name; a missing collection is
// created on its first add. Transport failures and 5xx responses wrap
// reconcile.ErrUnavailable.
package jellyfin
