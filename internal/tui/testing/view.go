package testing

import "github.com/charmbracelet/x/ansi"

// StripANSI returns a rendered view as plain text.
func StripANSI(view string) string {
	return ansi.Strip(view)
}
