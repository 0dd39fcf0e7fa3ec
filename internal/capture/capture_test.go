package capture

import (
	"errors"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Line
		wantErr bool
	}{
		{
			name: "typical capture",
			line: "2024-01-05 10:00:00,433.92,{204}beef55553475abcd,{12}ff0,",
			want: &Line{Date: "2024-01-05 10:00:00", Length: 204, Nibbles: "beef55553475abcd"},
		},
		{
			name: "frame field first",
			line: "{191}3475,tail",
			want: &Line{Date: "{191}3475", Length: 191, Nibbles: "3475"},
		},
		{
			name:    "no trailing comma",
			line:    "2024-01-05,{204}beef5555",
			wantErr: true,
		},
		{
			name:    "no braces",
			line:    "2024-01-05,204,beef,",
			wantErr: true,
		},
		{
			name:    "non-numeric length",
			line:    "2024-01-05,{abc}beef,",
			wantErr: true,
		},
		{
			name:    "empty",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrNoFrame) {
					t.Errorf("ParseLine() error = %v, want ErrNoFrame", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine() error = %v", err)
			}
			if *got != *tt.want {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLine_Plausible(t *testing.T) {
	tests := []struct {
		length int
		want   bool
	}{
		{190, false},
		{191, true},
		{204, true},
		{219, true},
		{220, false},
	}
	for _, tt := range tests {
		l := &Line{Length: tt.length}
		if got := l.Plausible(DefaultMinLength, DefaultMaxLength); got != tt.want {
			t.Errorf("Plausible(%d) = %v, want %v", tt.length, got, tt.want)
		}
	}
}

func TestScanner(t *testing.T) {
	input := "first\n\n   \n  second  \r\nthird"
	sc := NewScanner(strings.NewReader(input))

	type entry struct {
		no   int
		text string
	}
	var got []entry
	for sc.Scan() {
		got = append(got, entry{sc.LineNo(), sc.Text()})
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	want := []entry{{1, "first"}, {4, "second"}, {5, "third"}}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScanner_LongLine(t *testing.T) {
	long := strings.Repeat("a", 200*1024)
	sc := NewScanner(strings.NewReader(long + "\nnext\n"))

	if !sc.Scan() || len(sc.Text()) != len(long) {
		t.Fatalf("long line not returned intact, err = %v", sc.Err())
	}
	if !sc.Scan() || sc.Text() != "next" {
		t.Errorf("second line = %q, want next", sc.Text())
	}
}
