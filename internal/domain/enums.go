package domain

import "fmt"

// Window is a trailing mention-search window, expressed in seconds.
type Window int64

const (
	WindowDay         Window = 86400
	WindowWeek        Window = 604800
	WindowTwoWeeks    Window = 1209600
	WindowMonth       Window = 2592000
	WindowThreeMonths Window = 7776000
	WindowSixMonths   Window = 15552000
	WindowYear        Window = 31104000
)

// ParseWindow maps a configuration name to a Window.
func ParseWindow(name string) (Window, error) {
	switch name {
	case "day":
		return WindowDay, nil
	case "week":
		return WindowWeek, nil
	case "two-weeks":
		return WindowTwoWeeks, nil
	case "month":
		return WindowMonth, nil
	case "three-months":
		return WindowThreeMonths, nil
	case "six-months":
		return WindowSixMonths, nil
	case "year":
		return WindowYear, nil
	default:
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownWindow)
	}
}

// Seconds returns the window length in seconds, as the search API expects.
func (w Window) Seconds() int64 {
	return int64(w)
}

// Category is a forum category identifier.
type Category int

const (
	CategoryBioenergetics Category = 5
	CategoryCaseStudies   Category = 6
	CategoryNoosphere     Category = 7
	CategoryJunkyard      Category = 8
	CategoryMeta          Category = 9
)
