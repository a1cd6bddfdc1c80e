package colors

import "github.com/fatih/color"

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
)

// Status colors an HTTP status code green, yellow for client errors and red for server errors.
func Status(code int) string {
	switch {
	case code >= 500:
		return Red(code)
	case code >= 400:
		return Yellow(code)
	default:
		return Green(code)
	}
}
