/*
Package tui implements the interactive latency chart window.

# Architecture

The window follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: chart, summary text, viewport and terminal size
  - Update: resizes, key presses and status message timers
  - View: title bar, scrollable chart viewport and footer

# Key Components

  - model.go: Core state and message handling
  - keys.go: Keyboard input handling
  - render.go: Styles and view rendering
  - actions.go: Side effects (clipboard copy)
  - init.go: Program setup and ShowChart entry point

# Keybindings

	q, esc, ctrl+c   close the window
	up/k, down/j     scroll one line
	pgup, pgdown     scroll one page
	g, G             jump to top or bottom
	y                copy the statistics summary to the clipboard

The chart is re-rendered to the viewport size on every resize, so the
plot always fills the window. The statistics summary follows the chart
inside the viewport.
*/
package tui
