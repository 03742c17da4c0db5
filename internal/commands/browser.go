package commands

import (
	"io"

	"github.com/pkg/browser"
)

// Opener opens a URL in the user's browser.
type Opener func(url string) error

// Open calls o, or the system browser when o is nil. Output of the launched
// process goes to errOut.
func (o Opener) Open(url string, errOut io.Writer) error {
	if o != nil {
		return o(url)
	}
	browser.Stdout = errOut
	browser.Stderr = errOut
	return browser.OpenURL(url)
}
