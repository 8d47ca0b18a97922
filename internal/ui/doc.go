// Package ui is the Bubble Tea front end of the studio client.
//
// Core pieces:
//   - AppModel: root model; owns routing, readiness gating and status polling
//   - View: a screen or region with its own init, update and view (Elm-style)
//   - Backend: the remote operations views call through tea.Cmd
//   - KeyHandler: SPC-leader key sequences with route-scoped hints
//   - OverlayStack: modal views drawn over the current route
//   - FocusManager: tab order across the inputs of a view
//   - Ticker: generation-tagged polling that can be stopped
package ui
