package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"bogus", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "nope"})
	require.Error(t, err)
}

func TestWithFieldReturnsNewLogger(t *testing.T) {
	base, err := New(&Config{Level: "disabled"})
	require.NoError(t, err)

	derived := base.WithField("blog", "example")
	assert.NotSame(t, base, derived)

	// The original logger's field set is unchanged.
	again := base.WithField("other", "value")
	assert.NotSame(t, derived, again)
}

func TestWithErrorNilIsNoop(t *testing.T) {
	base, err := New(&Config{Level: "disabled"})
	require.NoError(t, err)

	assert.Same(t, base, base.WithError(nil))
}

func TestGetLoggerAlwaysReturns(t *testing.T) {
	assert.NotNil(t, GetLogger())
}
