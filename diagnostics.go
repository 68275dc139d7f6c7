package compositor

import (
	"log/slog"
	"os"
)

// NewLogger builds the single structured logger passed down through the
// compositor. Diagnostics go to stderr as text lines, matching the
// "structured diagnostic lines" requirement without pulling in a
// third-party logging library — log/slog's text handler already does
// exactly this.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
