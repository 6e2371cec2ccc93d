package tracker

import (
	"reflect"
	"strings"
	"testing"
)

func TestRenderMenuEmpty(t *testing.T) {
	text, rows := RenderMenu(NewUserRecord())

	want := "Your Tuitions:\n\nNo tuitions added yet. Use \"Add Tuition\" to start."
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}

	wantRows := [][]string{
		{ButtonAddTuition},
		{ButtonMainMenu},
		{ButtonAbout},
	}
	if !reflect.DeepEqual(rows, wantRows) {
		t.Fatalf("rows = %v, want %v", rows, wantRows)
	}
}

func TestRenderMenuWithTuitions(t *testing.T) {
	rec := NewUserRecord()
	rec.Tuitions = append(rec.Tuitions,
		TuitionEntry{ID: 1, Name: "Math", Days: 2},
		TuitionEntry{ID: 2, Name: "Physics", Days: 0},
	)

	text, rows := RenderMenu(rec)

	if !strings.Contains(text, "Math - 2 days attended.") {
		t.Fatalf("text missing Math line: %q", text)
	}
	if !strings.Contains(text, "Physics - 0 days attended.") {
		t.Fatalf("text missing Physics line: %q", text)
	}

	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	if !reflect.DeepEqual(rows[0], []string{"📅 Math (2 days)", "❌ Delete Math"}) {
		t.Fatalf("rows[0] = %v", rows[0])
	}
	if !reflect.DeepEqual(rows[1], []string{"📅 Physics (0 days)", "❌ Delete Physics"}) {
		t.Fatalf("rows[1] = %v", rows[1])
	}
}

func TestParseAttendButton(t *testing.T) {
	cases := []struct {
		in   string
		name string
		ok   bool
	}{
		{"📅 Math (2 days)", "Math", true},
		{"📅 Advanced Calculus II (100 days)", "Advanced Calculus II", true},
		{"📅 Math (x days)", "", false},
		{"Math (2 days)", "", false},
		{"📅 Math", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		name, ok := ParseAttendButton(tc.in)
		if ok != tc.ok || name != tc.name {
			t.Errorf("ParseAttendButton(%q) = (%q, %v), want (%q, %v)", tc.in, name, ok, tc.name, tc.ok)
		}
	}
}

func TestParseDeleteButton(t *testing.T) {
	name, ok := ParseDeleteButton("❌ Delete Math")
	if !ok || name != "Math" {
		t.Fatalf("ParseDeleteButton = (%q, %v)", name, ok)
	}
	if _, ok := ParseDeleteButton("Delete Math"); ok {
		t.Fatal("ParseDeleteButton accepted text without the button prefix")
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	entry := TuitionEntry{ID: 7, Name: "English (evening)", Days: 4}

	name, ok := ParseAttendButton(AttendLabel(entry))
	if !ok || name != entry.Name {
		t.Fatalf("attend round trip = (%q, %v)", name, ok)
	}

	name, ok = ParseDeleteButton(DeleteLabel(entry.Name))
	if !ok || name != entry.Name {
		t.Fatalf("delete round trip = (%q, %v)", name, ok)
	}
}
