package tui

import "time"

// UI Layout Constants

const (
	// Viewport Padding and Borders
	ViewportBorderWidth       = 2 // Width consumed by borders
	ViewportPaddingHorizontal = 2 // Horizontal padding (left + right)

	// Chrome around the viewport: title (1) + border (2) + footer (1)
	ChromeLines = 4

	// Smallest viewport the chart is rendered into
	MinViewportWidth  = 20
	MinViewportHeight = 10

	// Footer messages longer than this are truncated
	StatusMessageMaxLen = 100

	// How long status and error messages stay in the footer
	StatusMessageTimeout = 3 * time.Second
)
