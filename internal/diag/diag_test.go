package diag

import (
	"strings"
	"testing"
)

func TestRecorder_CapturesInOrder(t *testing.T) {
	t.Parallel()
	var rec Recorder
	rec.Infof("starting %s", "run")
	rec.Warnf("skipping %q", "thing")
	rec.Debugf("detail")
	rec.Warnf("second")

	entries := rec.Entries()
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}
	if entries[0].Level != "info" || entries[0].Message != "starting run" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}

	warnings := rec.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v", warnings)
	}
	if !strings.Contains(warnings[0], "skipping") || warnings[1] != "second" {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestNop_Discards(t *testing.T) {
	t.Parallel()
	var s Sink = Nop{}
	s.Warnf("goes nowhere")
	s.Infof("goes nowhere")
	s.Debugf("goes nowhere")
}

func TestNewLogrus_NilFallsBack(t *testing.T) {
	t.Parallel()
	l := NewLogrus(nil)
	if l.Logger == nil {
		t.Fatal("expected the standard logger fallback")
	}
}
