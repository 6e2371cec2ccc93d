package tracker

import (
	"context"
	"errors"
	"testing"
)

func newTestService() *Service {
	svc := NewService(NewMemoryStore())
	next := 0
	svc.newID = func() int {
		next++
		return next
	}
	return svc
}

func TestStartUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	rec, err := svc.StartUser(ctx, 1)
	if err != nil {
		t.Fatalf("StartUser: %v", err)
	}
	if len(rec.Tuitions) != 0 {
		t.Fatalf("new record has %d tuitions, want 0", len(rec.Tuitions))
	}

	if _, _, err := svc.AddTuition(ctx, 1, "Math"); err != nil {
		t.Fatalf("AddTuition: %v", err)
	}

	// A second start must not reset the record.
	rec, err = svc.StartUser(ctx, 1)
	if err != nil {
		t.Fatalf("StartUser again: %v", err)
	}
	if len(rec.Tuitions) != 1 {
		t.Fatalf("record has %d tuitions after restart, want 1", len(rec.Tuitions))
	}

	users, err := svc.TotalUsers(ctx)
	if err != nil {
		t.Fatalf("TotalUsers: %v", err)
	}
	if users != 1 {
		t.Fatalf("TotalUsers = %d, want 1", users)
	}
}

func TestAddTuitionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	var vErr *ValidationError
	if _, _, err := svc.AddTuition(ctx, 1, "   "); !errors.As(err, &vErr) {
		t.Fatalf("AddTuition(blank) err = %v, want ValidationError", err)
	}

	entry, rec, err := svc.AddTuition(ctx, 1, "  Physics  ")
	if err != nil {
		t.Fatalf("AddTuition: %v", err)
	}
	if entry.Name != "Physics" {
		t.Fatalf("entry.Name = %q, want trimmed %q", entry.Name, "Physics")
	}
	if entry.Days != 0 {
		t.Fatalf("entry.Days = %d, want 0", entry.Days)
	}
	if len(rec.Tuitions) != 1 {
		t.Fatalf("record has %d tuitions, want 1", len(rec.Tuitions))
	}

	var dErr *DuplicateError
	if _, _, err := svc.AddTuition(ctx, 1, "Physics"); !errors.As(err, &dErr) {
		t.Fatalf("AddTuition(duplicate) err = %v, want DuplicateError", err)
	}
}

func TestMarkAttendanceIncrementsMonotonically(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.AddTuition(ctx, 1, "Chemistry"); err != nil {
		t.Fatalf("AddTuition: %v", err)
	}

	for want := 1; want <= 3; want++ {
		entry, _, err := svc.MarkAttendance(ctx, 1, "Chemistry")
		if err != nil {
			t.Fatalf("MarkAttendance #%d: %v", want, err)
		}
		if entry.Days != want {
			t.Fatalf("Days = %d, want %d", entry.Days, want)
		}
	}

	var nfErr *NotFoundError
	if _, _, err := svc.MarkAttendance(ctx, 1, "Biology"); !errors.As(err, &nfErr) {
		t.Fatalf("MarkAttendance(unknown) err = %v, want NotFoundError", err)
	}
}

func TestDeleteTuition(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.AddTuition(ctx, 1, "Math"); err != nil {
		t.Fatalf("AddTuition: %v", err)
	}
	if _, _, err := svc.AddTuition(ctx, 1, "English"); err != nil {
		t.Fatalf("AddTuition: %v", err)
	}

	rec, err := svc.DeleteTuition(ctx, 1, "Math")
	if err != nil {
		t.Fatalf("DeleteTuition: %v", err)
	}
	if len(rec.Tuitions) != 1 || rec.Tuitions[0].Name != "English" {
		t.Fatalf("record after delete = %+v", rec.Tuitions)
	}

	var nfErr *NotFoundError
	if _, err := svc.DeleteTuition(ctx, 1, "Math"); !errors.As(err, &nfErr) {
		t.Fatalf("DeleteTuition(again) err = %v, want NotFoundError", err)
	}

	// Deleting never touches other users.
	if _, _, err := svc.AddTuition(ctx, 2, "Math"); err != nil {
		t.Fatalf("AddTuition user 2: %v", err)
	}
	if _, err := svc.DeleteTuition(ctx, 1, "English"); err != nil {
		t.Fatalf("DeleteTuition: %v", err)
	}
	other, err := svc.Record(ctx, 2)
	if err != nil {
		t.Fatalf("Record user 2: %v", err)
	}
	if len(other.Tuitions) != 1 {
		t.Fatalf("user 2 record = %+v", other.Tuitions)
	}
}

func TestStatsAggregatesAcrossUsers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.AddTuition(ctx, 1, "Math"); err != nil {
		t.Fatalf("AddTuition: %v", err)
	}
	if _, _, err := svc.AddTuition(ctx, 1, "Physics"); err != nil {
		t.Fatalf("AddTuition: %v", err)
	}
	if _, _, err := svc.AddTuition(ctx, 2, "Math"); err != nil {
		t.Fatalf("AddTuition: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Users != 2 || stats.Tuitions != 3 {
		t.Fatalf("Stats = %+v, want 2 users / 3 tuitions", stats)
	}
}

func TestPickIDAvoidsCollisions(t *testing.T) {
	svc := NewService(NewMemoryStore())
	svc.newID = func() int { return 5 }

	rec := NewUserRecord()
	rec.Tuitions = append(rec.Tuitions, TuitionEntry{ID: 5, Name: "Math"})

	id := svc.pickID(rec)
	if id == 5 {
		t.Fatal("pickID returned an id already in use")
	}
	if id < 0 || id >= tuitionIDRange {
		t.Fatalf("pickID = %d, outside [0,%d)", id, tuitionIDRange)
	}
}
