// Package ui renders the cards list as a Bubble Tea program.
//
// The model observes a cards list subscription (a query lifecycle) and
// re-renders whenever its snapshot changes. Observer callbacks only signal a
// buffered channel; a pending command then reads the latest snapshot, so a
// burst of cache writes produces one render.
//
// # Keys
//
//   - a: add the demo card (the list is refetched afterwards)
//   - d: delete the selected card (the cached list is patched locally)
//   - r: refetch the list
//   - p: toggle polling; the choice is saved to prefs
//   - /: find a card by name (defaults to "snow")
//   - ←/→ or k/j: select a card
//   - T: cycle theme
//   - h/?: toggle full help
//   - q/ctrl+c: quit
//
// While a refetch or poll is running, the last good list stays on screen
// under a banner. Errors are shown above the list without clearing it.
package ui
