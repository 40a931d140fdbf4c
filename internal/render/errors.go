package render

import "errors"

var (
	// ErrValidation marks settings that cannot be rendered, such as a missing
	// location or date. No canvas mutation happens.
	ErrValidation = errors.New("invalid settings")

	// ErrSuperseded is returned by a render whose result was discarded because
	// a newer render started. It is never reported.
	ErrSuperseded = errors.New("render superseded")
)
