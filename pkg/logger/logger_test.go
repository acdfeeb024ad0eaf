package logger

import (
	"context"
	"errors"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialising must not panic and must keep a usable logger.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	ctx := context.Background()
	l := Named("test")

	l.Info(ctx, "info message", String("fixture", "1035123"), Int("minute", 64))
	l.Debug(ctx, "debug message", Float64("xg", 1.42))
	l.Warn(ctx, "warn message", Bool("paused", true))
	l.Error(ctx, "error message", Error(errors.New("boom")), Int64("fixture_id", 42))
}

func TestSetLevelString(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "debug", want: "debug"},
		{in: "INFO", want: "info"},
		{in: "", want: "info"},
		{in: "warning", want: "warn"},
		{in: "error", want: "error"},
		{in: "loud", wantErr: true},
	}
	for _, tc := range cases {
		err := SetLevelString(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("SetLevelString(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetLevelString(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got := CurrentLevel(); got != tc.want {
			t.Errorf("SetLevelString(%q) level = %s, want %s", tc.in, got, tc.want)
		}
	}
	_ = SetLevelString("info")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "discarded")
	if l.Named("child") == nil {
		t.Fatal("named nop logger must not be nil")
	}
}
