package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/pipeline"
)

const (
	txFrame     = "34751a2b3c4d800d010003e8000000fa0000bf740"
	searchFrame = "34751a2bffff100d010123450000000001007fb1a"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "sub", "readings.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func reading(t *testing.T, date, f string) pipeline.Reading {
	t.Helper()
	rec, err := frame.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return pipeline.Reading{Date: date, Record: rec}
}

func TestStore_Save(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	shifted, err := frame.WithCRC(txFrame, 0x7ee8)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		rd    pipeline.Reading
		added bool
	}{
		{"first valid", reading(t, "10:00", txFrame), true},
		{"repeat of same capture", reading(t, "10:00", txFrame), false},
		{"same frame later", reading(t, "10:01", txFrame), true},
		{"shifted crc", reading(t, "10:02", shifted), false},
		{"search frame", reading(t, "10:03", searchFrame), true},
	}

	for _, tt := range tests {
		added, err := st.Save(ctx, tt.rd)
		if err != nil {
			t.Fatalf("%s: Save() error = %v", tt.name, err)
		}
		if added != tt.added {
			t.Errorf("%s: Save() = %v, want %v", tt.name, added, tt.added)
		}
	}

	n, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestStore_Recent(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, rd := range []pipeline.Reading{
		reading(t, "a", txFrame),
		reading(t, "b", searchFrame),
		reading(t, "c", txFrame),
	} {
		if err := st.Handle(ctx, rd); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}

	got, err := st.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].Date != "c" || got[1].Date != "b" {
		t.Fatalf("Recent(2) = %+v, want dates c, b", got)
	}
	if got[0].TotalAh != 10 || got[0].SenderID != "3c4d" || got[0].CRC != "bf74" {
		t.Errorf("entry = %+v", got[0])
	}
	if !got[0].StoredAt.Equal(base.Add(3 * time.Second)) {
		t.Errorf("StoredAt = %v", got[0].StoredAt)
	}
	if got[0].Key != Key("c", txFrame) {
		t.Errorf("Key = %d, want %d", got[0].Key, Key("c", txFrame))
	}

	search, err := st.RecentBySender(ctx, frame.SearchSenderID, 10)
	if err != nil {
		t.Fatalf("RecentBySender() error = %v", err)
	}
	if len(search) != 1 || search[0].Date != "b" {
		t.Errorf("RecentBySender(ffff) = %+v", search)
	}
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.db")
	ctx := context.Background()

	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(ctx, reading(t, "a", txFrame)); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer st.Close()

	if added, err := st.Save(ctx, reading(t, "a", txFrame)); err != nil || added {
		t.Errorf("Save() after reopen = %v, %v; want false, nil", added, err)
	}
}

func TestKey(t *testing.T) {
	if Key("a", txFrame) == Key("b", txFrame) {
		t.Error("different dates should give different keys")
	}
	if Key("a", txFrame) != Key("a", txFrame) {
		t.Error("Key() is not deterministic")
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}
