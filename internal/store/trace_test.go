package store

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench", "trace.jsonl")

	writer, err := NewTraceWriter(path, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{
		{Backend: "lanes", Pipeline: "full", Direction: "combined", Width: 640, Height: 480, Iterations: 100, DurationNs: 5e8, MPixelsPerSec: 61.44, Timestamp: time.Now()},
		{Backend: "scalar", Pipeline: "full", Direction: "combined", Width: 640, Height: 480, Iterations: 10, DurationNs: 4e8, MPixelsPerSec: 7.68, Timestamp: time.Now()},
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	if writer.Path() != path {
		t.Errorf("Path() = %s, want %s", writer.Path(), path)
	}

	got, err := ReadTraceFile(path)
	if err != nil {
		t.Fatalf("ReadTraceFile: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("read %d entries, want %d", len(got), len(entries))
	}
	for i := range got {
		if got[i].Backend != entries[i].Backend || got[i].MPixelsPerSec != entries[i].MPixelsPerSec {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestTraceWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	for i := 0; i < 2; i++ {
		w, err := NewTraceWriter(path, true)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(TraceEntry{Backend: "lanes", Iterations: i})
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
		w.Close()
	}

	got, err := ReadTraceFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Iterations != 1 {
		t.Errorf("appended trace = %+v", got)
	}
}

func TestReadTrace_Malformed(t *testing.T) {
	_, err := ReadTrace(strings.NewReader("{\"backend\":\"lanes\"}\n\nnot json\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("ReadTrace error = %v, want failure on line 3", err)
	}
}
