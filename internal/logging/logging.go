// Package logging configures the zerolog loggers used across bruja's
// binaries and internal packages.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.Mutex
	level  = zerolog.InfoLevel
	writer io.Writer = os.Stderr
)

// Init sets the global log level and destination. Call once from main.
func Init(levelName string, pretty bool) {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := zerolog.ParseLevel(levelName)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	level = lvl

	if pretty {
		writer = zerolog.ConsoleWriter{Out: os.Stderr}
	} else {
		writer = os.Stderr
	}
	zerolog.SetGlobalLevel(level)
}

// For returns a component-scoped logger, e.g. For("p2pnode").
func For(component string) zerolog.Logger {
	mu.Lock()
	w := writer
	mu.Unlock()
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}
