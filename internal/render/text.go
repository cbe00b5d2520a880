package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Text writes a plain terminal rendering of v.
func Text(w io.Writer, v PlanView) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", v.Title)
	fmt.Fprintf(bw, "%s\n", strings.Repeat("=", len(v.Title)))
	if v.Target > 0 {
		fmt.Fprintf(bw, "Target: %s/day\n", v.TargetLabel)
	}

	for _, d := range v.Days {
		fmt.Fprintf(bw, "\nDay %d  %s  %s (%d%% of target)  %d kcal  %d items\n",
			d.Day, d.TierLabel, d.CostLabel, d.Percent, d.TotalKcal, d.Items)
		fmt.Fprintf(bw, "  %s\n", bar(d.Percent, 24))
		for _, m := range d.Meals {
			fmt.Fprintf(bw, "  %s %-10s %s (%d kcal, %s)\n", m.Icon, m.Type, m.Dish, m.Calories, m.Cost)
			if m.Summary != "" {
				fmt.Fprintf(bw, "      %s\n", m.Summary)
			}
		}
	}

	return bw.Flush()
}

// bar draws percent (0..120) on a scale where width cells equal 120%.
func bar(percent, width int) string {
	filled := percent * width / 120
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
