package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ch0de/video-Chuck-a-Luck/internal/wheel"
)

type screenMode int

const (
	screenGame screenMode = iota
	screenStats
)

// View is everything the display needs for one frame. It is a copy; the
// display never touches daemon-owned state.
type View struct {
	Screen screenMode

	Phase   wheel.Phase
	Angle   float64
	Segment int

	ResultText string
	HaveResult bool

	TestMode  bool
	TestIndex int

	LastFive []string
	Window   wheel.WindowStats
	Stats    wheel.Snapshot
}

// Display renders the operator-facing screen. All implementations must
// be cheap enough to call on every frame the daemon decides to draw.
type Display interface {
	Frame(v View)
	Bell()
	Close()
}

// nopDisplay is used when the daemon runs headless.
type nopDisplay struct{}

func (nopDisplay) Frame(View) {}
func (nopDisplay) Bell()      {}
func (nopDisplay) Close()     {}

// ansiDisplay renders a live status line (and a stats block on demand)
// to a terminal. The peg tick is played through the terminal bell.
type ansiDisplay struct {
	w          io.Writer
	statsShown bool
}

func newAnsiDisplay(w io.Writer) *ansiDisplay {
	return &ansiDisplay{w: w}
}

func (d *ansiDisplay) Frame(v View) {
	if v.Screen == screenStats {
		d.statsShown = true
		d.renderStats(v)
		return
	}
	if d.statsShown {
		// Returning from the stats screen: clear it once.
		d.statsShown = false
		fmt.Fprint(d.w, "\x1b[2J\x1b[H")
	}
	d.renderGame(v)
}

func (d *ansiDisplay) renderGame(v View) {
	var b strings.Builder
	b.WriteString("\x1b[H")

	line := func(format string, args ...any) {
		b.WriteString("\x1b[2K")
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	var status strings.Builder
	switch {
	case v.TestMode:
		fmt.Fprintf(&status, "\x1b[33m--- TEST MODE ---\x1b[0m  position %2d", v.TestIndex)
	case v.Phase != wheel.PhaseIdle:
		fmt.Fprintf(&status, "\x1b[36m%-10s\x1b[0m", v.Phase)
	default:
		status.WriteString("ready     ")
	}
	fmt.Fprintf(&status, "  angle %8.1f  segment %2d", v.Angle, v.Segment)
	if v.HaveResult {
		fmt.Fprintf(&status, "  \x1b[1m%s\x1b[0m", v.ResultText)
	}
	line("%s", status.String())

	if len(v.LastFive) > 0 {
		line("last: %s", strings.Join(v.LastFive, " | "))
	}

	if v.Window.Spins > 0 {
		line("")
		line("\x1b[32mLast 5 Stats\x1b[0m")
		line("Result: Hits | Percent")
		for face := 1; face <= 6; face++ {
			hits := v.Window.DieCounts[face]
			percent := 0.0
			if v.Window.TotalDice > 0 {
				percent = float64(hits) / float64(v.Window.TotalDice) * 100
			}
			line("%-6d: %3d | %5.1f%%", face, hits, percent)
		}
		line("%s", strings.Repeat("-", 23))
		for _, row := range []struct {
			label string
			hits  int
		}{
			{"House Wins", v.Window.HouseWins},
			{"Spin Again", v.Window.SpinAgains},
		} {
			percent := float64(row.hits) / float64(v.Window.Spins) * 100
			line("%-11s: %2d | %5.1f%%", row.label, row.hits, percent)
		}
	}

	fmt.Fprint(d.w, b.String())
}

func (d *ansiDisplay) renderStats(v View) {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	b.WriteString("\x1b[1mFull Statistics\x1b[0m\r\n\r\n")
	fmt.Fprintf(&b, "Total spins: %d\r\n", v.Stats.TotalSpins)
	fmt.Fprintf(&b, "House wins:  %d    Spin agains: %d\r\n", v.Stats.HouseWins, v.Stats.SpinAgains)
	fmt.Fprintf(&b, "Singles: %d  Doubles: %d  Triples: %d\r\n\r\n", v.Stats.Singles, v.Stats.Doubles, v.Stats.Triples)

	b.WriteString("Die   Count\r\n")
	for face := 1; face <= 6; face++ {
		fmt.Fprintf(&b, "  %d   %5d\r\n", face, v.Stats.DieCounts[face])
	}

	b.WriteString("\r\nPayouts & Odds\r\n")
	for _, row := range wheel.PayoutTable() {
		fmt.Fprintf(&b, "  %-8s %-10s %2d in 54\r\n", row.Outcome, row.Payout, row.Segments)
	}

	if len(v.Stats.History) > 0 {
		fmt.Fprintf(&b, "\r\nLast %d results:\r\n", len(v.Stats.History))
		for i, label := range v.Stats.History {
			fmt.Fprintf(&b, "  %2d. %s\r\n", i+1, label)
		}
	}
	b.WriteString("\r\nPress 'S' to return to the game\r\n")
	fmt.Fprint(d.w, b.String())
}

func (d *ansiDisplay) Bell() {
	fmt.Fprint(d.w, "\a")
}

func (d *ansiDisplay) Close() {
	fmt.Fprint(d.w, "\x1b[0m\r\n")
}
