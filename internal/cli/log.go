// Package cli implements the ancestrysim command-line interface.
//
// This package provides commands for running ancestry simulations,
// simplifying tree-sequence tables, visualizing the resulting graph, and
// managing the snapshot cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - simulate: Run a forward-time simulation and simplify the result
//   - simplify: Simplify an already-exported edge/node table
//   - visualize: Render a snapshot to Graphviz DOT or SVG
//   - watch: Run a simulation with a live terminal dashboard
//   - serve: Expose simplification over HTTP
//   - cache: Manage the snapshot cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The root
// CLI holds one logger, shared by every command through the CLI struct.
//
// # Example
//
//	import "github.com/foretime/ancestry/internal/cli"
//
//	func main() {
//	    root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
//	    if err := root.ExecuteContext(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Simplified 120 records to 15 (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
