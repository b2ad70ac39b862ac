package logger

import (
	"sync"
	"testing"

	"go.uber.org/zap/zapcore"
)

func resetLogger() {
	global = nil
	once = sync.Once{}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"json info", "info", "json", zapcore.InfoLevel, false},
		{"console debug", "debug", "console", zapcore.DebugLevel, false},
		{"json error", "error", "json", zapcore.ErrorLevel, false},
		{"invalid level", "chatty", "json", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLogger()
			err := Init(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init(%q, %q) error = %v, wantErr %v", tt.level, tt.format, err, tt.wantErr)
			}
			if !tt.wantErr && atomicLevel.Level() != tt.wantLevel {
				t.Errorf("level = %v, want %v", atomicLevel.Level(), tt.wantLevel)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	resetLogger()
	if err := Init("info", "json"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug) error = %v", err)
	}
	if atomicLevel.Level() != zapcore.DebugLevel {
		t.Errorf("level = %v, want debug", atomicLevel.Level())
	}

	if err := SetLevel("nope"); err == nil {
		t.Error("SetLevel(nope) expected error")
	}
}

func TestSyncBeforeInit(t *testing.T) {
	resetLogger()
	if err := Sync(); err != nil {
		t.Errorf("Sync() before Init error = %v", err)
	}
}
