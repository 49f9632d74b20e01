// Package services reads the signed-in user's YouTube playlists.
//
// # Playlist Service
//
// [PlaylistService] is the abstraction the CLI and TUI render from. [YouTubeService] implements it with the
// generated YouTube Data API v3 client.
//
// Each call makes exactly one playlists.list request (part=snippet,contentDetails, mine=true, maxResults=50).
// There is no pagination, caching or retry. Requests pass through a [rate.Limiter] and are bounded by the
// configured timeout.
//
// # Authorization
//
// A [TokenProvider] supplies the account's [oauth2.TokenSource]; the auth package's controller implements it
// on top of the token store, so refreshed tokens are persisted.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no account or no stored token
//   - [shared.ErrTokenExpired] : the API rejected the token or it could not be refreshed
//   - [shared.ErrAPIRequest] : any other API failure
//   - [shared.ErrTimeout] : the request deadline passed
package services
