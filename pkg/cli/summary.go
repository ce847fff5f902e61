package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/cvd-tools/cvdget/pkg/domain/model"
	"github.com/cvd-tools/cvdget/pkg/utils/bytefmt"
)

// renderSummary prints the per-file results and the overall verdict.
// The verdict line keys on required-file presence, not on this run's
// download counts: stale but present databases still protect.
func renderSummary(w io.Writer, summary *model.RunSummary) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Download Summary: %d/%d files successfully downloaded\n",
		summary.SuccessCount, summary.TotalCount())

	for _, outcome := range summary.Outcomes {
		if outcome.Succeeded {
			green.Fprintf(w, "  ✓ %s (%s) from %s\n",
				outcome.Target.Name, bytefmt.FormatBytes(outcome.SizeBytes), outcome.Mirror)
		} else {
			red.Fprintf(w, "  ✗ %s\n", outcome.Target.Name)
		}
	}

	if summary.Succeeded() {
		green.Fprintln(w, "✓ Database update completed successfully!")
		fmt.Fprintln(w, "\nPlease restart ClamWin for the changes to take effect.")
		return
	}

	red.Fprintf(w, "✗ Missing required files: %s\n", strings.Join(summary.MissingRequired, ", "))
	if summary.SuccessCount > 0 {
		fmt.Fprintln(w, "Partial update completed. ClamWin may still function with outdated definitions.")
	}
}
