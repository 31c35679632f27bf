package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	// logFile is the debug sink opened by the last Init, closed on the next one.
	logFile *os.File
)

// Options controls where log output goes.
// Level can be: "debug", "info", "warn", "error", "fatal".
type Options struct {
	Level  string
	Output io.Writer
	// LogDir, when set together with debug level, receives joke_cli.log
	// with JSON lines in addition to the console output.
	LogDir string
}

// Init initializes the global logger.
// Console output is human-friendly; the optional debug file keeps raw JSON.
func Init(opts Options) {
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.WarnLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var writer io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	var fileErr error
	if lvl == zerolog.DebugLevel && opts.LogDir != "" {
		logFile, fileErr = openLogFile(opts.LogDir)
		if fileErr == nil {
			writer = zerolog.MultiLevelWriter(writer, logFile)
		}
	}

	log = zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Msg("could not create log file")
	}
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "joke_cli.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func init() {
	// Default logger before Init() is called
	Init(Options{Level: "warn"})
}

// --- Convenience functions ---

func Debug() *zerolog.Event { return log.Debug() }
func Warn() *zerolog.Event  { return log.Warn() }

// Debugf provides printf-style logging at debug level.
func Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

// Infof provides printf-style logging at info level.
func Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// Errorf provides printf-style logging at error level.
func Errorf(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

// Warnf provides printf-style logging at warn level.
func Warnf(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}
