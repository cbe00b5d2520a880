package client

import (
	"fmt"
	"io"
	"strings"
)

// ProgressPrinter renders controller states on a terminal. An animated
// printer redraws one line in place; otherwise it prints one line per 10%.
type ProgressPrinter struct {
	w        io.Writer
	animated bool
	last     int
}

// NewProgressPrinter returns an Observer writing to w.
func NewProgressPrinter(w io.Writer, animated bool) *ProgressPrinter {
	return &ProgressPrinter{w: w, animated: animated, last: -1}
}

// OnState implements Observer.
func (p *ProgressPrinter) OnState(s State) {
	switch s.Phase {
	case PhaseSubmitting:
		if p.animated {
			fmt.Fprintf(p.w, "\r%s", progressLine(s.Progress))
			return
		}
		if bucket := s.Progress / 10; bucket != p.last {
			p.last = bucket
			fmt.Fprintln(p.w, progressLine(s.Progress))
		}
	case PhaseSucceeded:
		if p.animated {
			fmt.Fprintf(p.w, "\r%s\n", progressLine(100))
		} else {
			fmt.Fprintln(p.w, progressLine(100))
		}
	case PhaseFailed:
		if p.animated {
			fmt.Fprintln(p.w)
		}
		fmt.Fprintf(p.w, "Error: %s\n", s.Err)
	case PhaseIdle:
		p.last = -1
	}
}

func progressLine(progress int) string {
	const width = 30
	filled := progress * width / 100
	return fmt.Sprintf("Generating Plan... (%d%%) [%s%s]",
		progress, strings.Repeat("=", filled), strings.Repeat(" ", width-filled))
}
