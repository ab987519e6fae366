package tui

import (
	"github.com/muesli/termenv"

	"github.com/njchilds90/gonewton/solver"
)

var statusColors = map[solver.Status]string{
	solver.Converged:       "#22c55e",
	solver.DerivativeZero:  "#f59e0b",
	solver.NotConverged:    "#f59e0b",
	solver.EvaluationError: "#ef4444",
	solver.ParseError:      "#ef4444",
	solver.InputError:      "#ef4444",
}

// StatusLine renders the terminal message coloured by status. An Ascii
// profile yields the bare message.
func StatusLine(p termenv.Profile, r solver.Result) string {
	s := termenv.String(r.Message)
	if hex, ok := statusColors[r.Status]; ok {
		s = s.Foreground(p.Color(hex))
	}
	if r.Status == solver.Converged && p != termenv.Ascii {
		s = s.Bold()
	}
	return s.String()
}

// Profile is the colour profile of stdout.
func Profile() termenv.Profile {
	return termenv.ColorProfile()
}
