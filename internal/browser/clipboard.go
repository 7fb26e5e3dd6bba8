package browser

import (
	"encoding/base64"
	"fmt"
	"io"
)

// Copier puts text on the user's clipboard
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to Copier
type CopierFunc func(string) error

func (f CopierFunc) Copy(text string) error { return f(text) }

// maxOSC52Bytes is the payload size most terminals accept
const maxOSC52Bytes = 100000

// OSC52Copier copies through the terminal using the OSC 52 escape
// sequence, which also works over SSH
type OSC52Copier struct {
	w io.Writer
}

// NewOSC52Copier creates a copier writing escape sequences to w, normally
// the terminal's stdout
func NewOSC52Copier(w io.Writer) *OSC52Copier {
	return &OSC52Copier{w: w}
}

func (c *OSC52Copier) Copy(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if len(encoded) > maxOSC52Bytes {
		return fmt.Errorf("value too large for terminal clipboard (%d bytes encoded)", len(encoded))
	}
	_, err := fmt.Fprintf(c.w, "\x1b]52;c;%s\a", encoded)
	return err
}
