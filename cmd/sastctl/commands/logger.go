package commands

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/sastops/sastctl/pkg/snyk"
)

// zerologAdapter bridges zerolog to the snyk.Logger interface.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewLogger creates a console logger writing to stderr. Verbose mode lowers
// the level to debug so API request logging becomes visible.
func NewLogger(verbose bool) snyk.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zerologAdapter{logger: logger}
}

func (l *zerologAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *zerologAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *zerologAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *zerologAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
