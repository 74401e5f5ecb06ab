package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// levelTrace sits one tier below slog's own Debug level, for the `-vvv`
// verbosity tier.
const levelTrace = slog.LevelDebug - 4

// logLevelEnvVar is the RUST_LOG-style override consulted when -v is left
// at its default: SGREP_LOG=debug, SGREP_LOG=trace, and so on.
const logLevelEnvVar = "SGREP_LOG"

// verbosityLevel maps a `-v` repeat count to a log level: 0 -> error,
// 1 -> info, 2 -> debug, 3+ -> trace.
func verbosityLevel(count int) slog.Level {
	switch {
	case count <= 0:
		return slog.LevelError
	case count == 1:
		return slog.LevelInfo
	case count == 2:
		return slog.LevelDebug
	default:
		return levelTrace
	}
}

// envLevel parses an SGREP_LOG value into a log level. Unrecognized or empty
// values report ok=false so the caller can fall back to -v's default.
func envLevel(raw string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		return slog.LevelError, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "trace":
		return levelTrace, true
	default:
		return slog.LevelError, false
	}
}

// resolveLevel honors -v when the user set it; otherwise it falls back to
// the SGREP_LOG environment variable, and finally to -v's own zero-value
// default (error), matching the original CLI's RUST_LOG-style precedence.
func resolveLevel(verbosity int) slog.Level {
	if verbosity != 0 {
		return verbosityLevel(verbosity)
	}

	if level, ok := envLevel(os.Getenv(logLevelEnvVar)); ok {
		return level
	}

	return verbosityLevel(verbosity)
}

// initLogger installs a slog.TextHandler writing to stderr at the level
// implied by verbosity (or SGREP_LOG, when -v is unset), and makes it the
// package-wide default so every component logs through the same sink.
func initLogger(verbosity int) {
	level := resolveLevel(verbosity)

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && a.Value.String() == levelTrace.String() {
				return slog.String(slog.LevelKey, "TRACE")
			}

			return a
		},
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))

	if !isatty.IsTerminal(os.Stderr.Fd()) {
		slog.DebugContext(context.Background(), "non-terminal stderr detected, color output will auto-disable")
	}
}
