// Package blogvault is the content store behind a small blog admin. It owns the
// ordered collection of post records and their cover image attachments, derives
// URL slugs from titles, and keeps both tables consistent across create, update,
// and delete operations. State is persisted as two independent keyed blobs
// through a pluggable Repository (see the bboltstore and sqlitestore packages).
package blogvault

import (
	"log/slog"
	"os"
	"time"
)

// Options configures a PostStore or ImageStore.
type Options struct {
	Logger *slog.Logger     // Logger used by the store. Default is a text logger to stderr.
	Clock  func() time.Time // Clock returns the current time. Default is time.Now.
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return defaultLogger()
}

func (o Options) clock() func() time.Time {
	if o.Clock != nil {
		return o.Clock
	}
	return time.Now
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		}))
}
