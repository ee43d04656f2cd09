package ledring

import (
	"fmt"
	"io"
	"strings"
)

// Strip is the physical LED ring output.
type Strip interface {
	// Show writes one frame to the hardware.
	Show(frame []RGB) error
	// Close blanks the ring and releases the output.
	Close() error
}

// TermStrip renders the ring as a row of truecolor dots on a terminal,
// so the controller can run on a dev machine with no ring attached.
type TermStrip struct {
	w io.Writer
}

func NewTermStrip(w io.Writer) *TermStrip {
	return &TermStrip{w: w}
}

func (s *TermStrip) Show(frame []RGB) error {
	var b strings.Builder
	b.WriteString("\r")
	for _, c := range frame {
		fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm●", c.R, c.G, c.B)
	}
	b.WriteString("\x1b[0m\x1b[K")
	_, err := io.WriteString(s.w, b.String())
	return err
}

func (s *TermStrip) Close() error {
	_, err := io.WriteString(s.w, "\x1b[0m\x1b[K\r\n")
	return err
}

// NopStrip discards frames. Used when the controller runs headless.
type NopStrip struct{}

func (NopStrip) Show([]RGB) error { return nil }
func (NopStrip) Close() error     { return nil }
