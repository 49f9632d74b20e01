// Package models defines the value types that flow between playster's layers.
//
//   - [Identity] : the signed-in account (name + type), persisted by the preference store and held by the session
//   - [Playlist] : a YouTube playlist summary, fetched per request and never cached
//
// An [Identity] with a blank name or type is treated as absent everywhere, so callers check [Identity.Valid]
// rather than comparing against the zero value.
package models
