// Package cli implements the prodgraph command-line interface.
//
// The commands resolve a target item into a production chain, lay it out and
// render it, browse the item catalog, and run the HTTP API. The CLI is built
// using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - resolve: Print the production chain of an item as a tree
//   - layout: Write the computed layout as JSON
//   - render: Generate SVG, PNG, PDF, JSON or DOT diagrams
//   - items: Search the item catalog
//   - pick: Choose an item interactively and print its chain
//   - serve: Run the HTTP API
//   - cache: Manage the pipeline cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and
// --log-format (text, json, logfmt); "serve" behind a log collector usually
// wants json. Loggers are passed through context.Context.
//
// # Example
//
//	import "github.com/matzehuels/prodgraph/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
)

// Log output formats accepted by --log-format.
const (
	logFormatText   = "text"
	logFormatJSON   = "json"
	logFormatLogfmt = "logfmt"
)

var logFormatters = map[string]log.Formatter{
	logFormatText:   log.TextFormatter,
	logFormatJSON:   log.JSONFormatter,
	logFormatLogfmt: log.LogfmtFormatter,
}

// parseLogFormat maps a --log-format value to a formatter.
func parseLogFormat(name string) (log.Formatter, error) {
	f, ok := logFormatters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(logFormatters))
		for n := range logFormatters {
			names = append(names, n)
		}
		slices.Sort(names)
		return log.TextFormatter, perrors.New(perrors.ErrCodeInvalidInput, "invalid log format %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return f, nil
}

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

// done logs msg with the elapsed time, rounded to the millisecond, as a
// structured field so json output stays machine-readable.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
