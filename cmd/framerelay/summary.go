// If you are AI: This file prints the colored end-of-run summary.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"framerelay/internal/core/cpuinfo"
	"framerelay/internal/svc/relay"
)

// summary writes one line per task with counters highlighted by health.
func summary(w io.Writer, role string, features cpuinfo.Features, tasks []relay.TaskInfo) {
	title := color.New(color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	dim := color.New(color.Faint)

	title.Fprintf(w, "framerelay %s summary\n", role)
	dim.Fprintf(w, "  cpu: %s\n", features)

	for _, t := range tasks {
		s := t.Stats
		fmt.Fprintf(w, "  %s/%s [%s]: %s frames, %s, %.1f fps\n",
			t.Name, t.Role, t.Strategy, humanize.Comma(int64(s.Frames)), humanize.IBytes(s.Bytes), s.FPS())

		problems := s.Dropped + s.Stalls + s.Mismatches
		line := good
		if problems > 0 {
			line = bad
		}
		line.Fprintf(w, "    dropped=%d stalled=%d skipped=%d mismatched=%d\n", s.Dropped, s.Stalls, s.Skipped, s.Mismatches)
		if t.Error != "" {
			bad.Fprintf(w, "    error: %s\n", t.Error)
		}
	}
}

// failure prints a fatal error in red on stderr.
func failure(err error) {
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "framerelay: %v\n", err)
}
