package followup

import (
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
)

func TestReassign(t *testing.T) {
	now := time.Date(2024, time.May, 3, 10, 0, 0, 0, time.UTC)
	open := Assignment{ClientJobID: "J1"}
	from := Executive{Code: "E1", DisplayName: "E1", Active: true}
	to := Executive{Code: "E2", DisplayName: "E2", Active: true}

	t.Run("audit text and cleared dates", func(t *testing.T) {
		update, err := Reassign(open, from, to, "Alice", "", now, 330)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if update.FeedbackText != "Profile assigned from E1(E1) to E2(E2)" {
			t.Fatalf("unexpected audit text %q", update.FeedbackText)
		}
		if update.Remarks != "Profile Assigned" || update.EJD != "" || update.IFD != "" {
			t.Fatalf("unexpected update %+v", update)
		}
		if update.NFD != "2024-05-06" {
			t.Fatalf("expected next business day, got %s", update.NFD)
		}
		if update.AssignToID != "E2" || update.AssignByID != "Alice" {
			t.Fatalf("unexpected ids %+v", update)
		}
		if update.Entry.Note != update.FeedbackText || update.Entry.EntryTime != "2024-05-03T15:30:00" {
			t.Fatalf("unexpected entry %+v", update.Entry)
		}
	})

	t.Run("custom note is trimmed and appended", func(t *testing.T) {
		named := Executive{Code: "E1", DisplayName: "Ravi Kumar"}
		update, err := Reassign(open, named, Executive{Code: "E2", DisplayName: "Meera", Active: true}, "Alice", "  call after lunch  ", now, 330)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "Profile assigned from Ravi Kumar(E1) to Meera(E2). call after lunch"
		if update.FeedbackText != want {
			t.Fatalf("got %q want %q", update.FeedbackText, want)
		}
	})

	t.Run("locked assignment is rejected", func(t *testing.T) {
		locked := Assignment{ClientJobID: "J1", NextFollowUpDate: "2099-01-01"}
		update, err := Reassign(locked, from, to, "Alice", "", now, 330)
		if err == nil {
			t.Fatal("expected precondition error")
		}
		if !errors.Is(err, ErrAssignmentLocked) {
			t.Fatalf("expected ErrAssignmentLocked, got %v", err)
		}
		if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict, got %s", pkgerrors.CodeOf(err))
		}
		if update != (AssignmentUpdate{}) {
			t.Fatalf("expected no update, got %+v", update)
		}
	})

	t.Run("invalid target", func(t *testing.T) {
		for _, target := range []Executive{{}, {Code: "  ", Active: true}, {Code: "E3", DisplayName: "Gone"}} {
			_, err := Reassign(open, from, target, "Alice", "", now, 330)
			if !errors.Is(err, ErrInvalidTarget) || pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				t.Fatalf("target %+v: expected validation error, got %v", target, err)
			}
		}
	})

	t.Run("missing actor", func(t *testing.T) {
		_, err := Reassign(open, from, to, " ", "", now, 330)
		if !errors.Is(err, ErrMissingActor) || pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("lock is evaluated in the local zone", func(t *testing.T) {
		// 19:00 UTC on the 6th is 00:30 IST on the 7th.
		a := Assignment{ClientJobID: "J1", NextFollowUpDate: "2024-05-06"}
		if _, err := Reassign(a, from, to, "Alice", "", time.Date(2024, time.May, 6, 19, 0, 0, 0, time.UTC), 330); err != nil {
			t.Fatalf("expected open after local midnight, got %v", err)
		}
		if _, err := Reassign(a, from, to, "Alice", "", time.Date(2024, time.May, 6, 18, 0, 0, 0, time.UTC), 330); err == nil {
			t.Fatal("expected locked before local midnight")
		}
	})
}
