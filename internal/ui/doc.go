// Package ui is the Bubble Tea front end of the admin dashboard.
//
// Building blocks:
//   - View: a screen or modal with its own model, update and view (Elm-style)
//   - ViewStack: drill-down navigation within a section (categories → subcategories)
//   - OverlayStack: modals (forms, delete confirmation) that receive input first
//   - KeyHandler: SPC-leader key sequences resolved against a KeybindRegistry
//
// Resource screens are projections of a resource.Manager snapshot. Manager
// calls run inside tea.Cmds and report back with opDoneMsg.
package ui
