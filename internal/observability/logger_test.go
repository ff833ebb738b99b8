package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/swim-data-etl/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level     string
		format    string
		debugOn   bool
		infoOn    bool
		warningOn bool
	}{
		{"debug", "text", true, true, true},
		{"info", "json", false, true, true},
		{"warn", "json", false, false, true},
		{"bogus", "json", false, true, true},
	}
	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})

			assert.Equal(t, tt.debugOn, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoOn, logger.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.warningOn, logger.Enabled(ctx, slog.LevelWarn))
			assert.Equal(t, tt.debugOn, slog.Default().Enabled(ctx, slog.LevelDebug), "installed as slog default")
		})
	}
}
