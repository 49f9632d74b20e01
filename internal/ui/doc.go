// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI moves between three screens:
//  1. [ScreenLoading] : shown at start for a fixed minimum time while the stored session is restored
//  2. [ScreenOnboarding] : offers the three sign-in methods and shows device codes and the last error
//  3. [ScreenContent] : the signed-in user's YouTube playlists
//
// Which screen follows loading, and every navigation after it, is decided by [Route] from the session snapshot.
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Session changes and sign-in prompts flow in through channels, read one message at a time by commands.
//
// Keyboard navigation uses vim-style bindings (j/k, l/o/c, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
