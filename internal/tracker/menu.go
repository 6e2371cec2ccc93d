package tracker

import (
	"fmt"
	"regexp"
	"strings"
)

// Reply-keyboard button labels. Attendance and delete buttons embed the
// tuition name, so routing matches them by pattern rather than label.
const (
	ButtonAddTuition = "➕ Add Tuition"
	ButtonMainMenu   = "🏠 Main Menu"
	ButtonAbout      = "ℹ️ About"
)

var attendButtonRe = regexp.MustCompile(`^📅 (.*?) \(\d+ days\)$`)

// AttendLabel formats the keyboard button that marks attendance for a tuition.
func AttendLabel(t TuitionEntry) string {
	return fmt.Sprintf("📅 %s (%d days)", t.Name, t.Days)
}

// DeleteLabel formats the keyboard button that deletes a tuition.
func DeleteLabel(name string) string {
	return "❌ Delete " + name
}

// ParseAttendButton extracts the tuition name from an attendance button press.
func ParseAttendButton(text string) (string, bool) {
	m := attendButtonRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseDeleteButton extracts the tuition name from a delete button press.
func ParseDeleteButton(text string) (string, bool) {
	if !strings.HasPrefix(text, "❌ Delete ") {
		return "", false
	}
	return strings.TrimPrefix(text, "❌ Delete "), true
}

// RenderMenu produces the main menu text and keyboard rows for a record.
// Each tuition gets a row with its attendance and delete buttons,
// followed by the static action rows.
func RenderMenu(rec *UserRecord) (string, [][]string) {
	var b strings.Builder
	b.WriteString("Your Tuitions:")

	if rec == nil || len(rec.Tuitions) == 0 {
		b.WriteString("\n\nNo tuitions added yet. Use \"Add Tuition\" to start.")
	} else {
		for _, t := range rec.Tuitions {
			fmt.Fprintf(&b, "\n\n%s - %d days attended.", t.Name, t.Days)
		}
	}

	var rows [][]string
	if rec != nil {
		for _, t := range rec.Tuitions {
			rows = append(rows, []string{AttendLabel(t), DeleteLabel(t.Name)})
		}
	}
	rows = append(rows,
		[]string{ButtonAddTuition},
		[]string{ButtonMainMenu},
		[]string{ButtonAbout},
	)

	return b.String(), rows
}
