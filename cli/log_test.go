package cli

import (
	"os"
	"testing"

	"github.com/ardnew/axbind/log"
)

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name   string
		args   []string
		level  logLevel
		format logFormat
		pretty bool
		caller bool
	}{
		{
			name:   "assigned",
			args:   []string{"--log-level=debug", "--log-format=json"},
			level:  "debug",
			format: "json",
			pretty: true,
		},
		{
			name:   "separate values",
			args:   []string{"apply", "--log-level", "warn", "-n"},
			level:  "warn",
			format: "text",
			pretty: true,
		},
		{
			name:   "negated booleans",
			args:   []string{"--no-log-pretty", "--log-caller"},
			level:  "info",
			format: "text",
			caller: true,
		},
		{
			name:   "explicit boolean",
			args:   []string{"--log-pretty=false", "--no-log-caller=false"},
			level:  "info",
			format: "text",
			caller: true,
		},
		{
			name:   "stops at terminator",
			args:   []string{"--", "--log-level=trace"},
			level:  "info",
			format: "text",
			pretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Level: "info", Format: "text", Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.level || f.Format != tt.format {
				t.Errorf("level/format = %q/%q, want %q/%q",
					f.Level, f.Format, tt.level, tt.format)
			}

			if f.Pretty != tt.pretty || f.Caller != tt.caller {
				t.Errorf("pretty/caller = %t/%t, want %t/%t",
					f.Pretty, f.Caller, tt.pretty, tt.caller)
			}
		})
	}
}
