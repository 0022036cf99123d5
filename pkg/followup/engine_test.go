package followup

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestRecordToAssignment(t *testing.T) {
	payload := `{
		"candidate_id": "C1",
		"client_job_id": " J1 ",
		"profilestatus": null,
		"remarks": "Open Profile",
		"next_follow_up_date": "2024-05-06",
		"interview_date": "",
		"feedback": "Remarks-Open Profile:Entered By-E1:Entry Time-03-05-2024 15:30:00",
		"revenue": [{"joining_date": "2024-03-01"}, {"joining_date": "soon"}, {"joining_date": "2024-01-15"}]
	}`
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	loc := Zone(330)
	a := rec.ToAssignment(loc)
	if a.ClientJobID != "J1" || a.ProfileStatus != "" {
		t.Fatalf("unexpected assignment %+v", a)
	}
	if len(a.Feedback) != 1 || a.Feedback[0].EnteredBy != "E1" {
		t.Fatalf("feedback not parsed %+v", a.Feedback)
	}
	if a.JoiningDate == nil || !a.JoiningDate.Equal(time.Date(2024, time.January, 15, 0, 0, 0, 0, loc)) {
		t.Fatalf("expected earliest joining date, got %v", a.JoiningDate)
	}
	if !IsAssignable(a, time.Date(2024, time.May, 4, 0, 0, 0, 0, loc)) {
		t.Fatal("open profile from the log should be assignable")
	}
}

func TestRecordIgnoresStaleRemarksColumn(t *testing.T) {
	payload := `{
		"candidate_id": "C2",
		"client_job_id": "J2",
		"remarks": "Open Profile",
		"next_follow_up_date": "2024-05-20",
		"feedback": "Remarks-Open Profile:Entry Time-01-05-2024 10:00:00||Remarks-Interested:Entry Time-03-05-2024 11:00:00"
	}`
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	loc := Zone(330)
	a := rec.ToAssignment(loc)
	if got := a.EffectiveRemark(); got.Text != "Interested" || got.Source != SourceRemarks {
		t.Fatalf("expected the logged remark, got %+v", got)
	}
	if IsAssignable(a, time.Date(2024, time.May, 4, 0, 0, 0, 0, loc)) {
		t.Fatal("a stale remarks column must not release the assignment")
	}
}

func TestEngineUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2024, time.May, 3, 10, 0, 0, 0, time.UTC)
	engine := NewEngine(Options{Clock: func() time.Time { return fixed }, OffsetMinutes: 330})

	if got := engine.Now().Format("2006-01-02 15:04"); got != "2024-05-03 15:30" {
		t.Fatalf("unexpected local now %s", got)
	}
	if got := engine.NextFollowUpDate(); got != "2024-05-06" {
		t.Fatalf("unexpected nfd %s", got)
	}
	entry := engine.NewEntry(FeedbackEntry{Remarks: "x"})
	if entry.EntryTime != "2024-05-03T15:30:00" {
		t.Fatalf("unexpected entry time %s", entry.EntryTime)
	}

	a := Assignment{ClientJobID: "J1", NextFollowUpDate: "2024-05-02"}
	if !engine.IsAssignable(a) {
		t.Fatal("follow-up from yesterday should have lapsed")
	}
	update, err := engine.Reassign(a, Executive{Code: "E1"}, Executive{Code: "E2", Active: true}, "E9", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.NFD != "2024-05-06" {
		t.Fatalf("unexpected nfd %s", update.NFD)
	}
}

func TestEngineMaskWindowDefaults(t *testing.T) {
	now := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	engine := NewEngine(Options{Clock: func() time.Time { return now }})
	jd := now.AddDate(0, 0, -50)
	if got := engine.DisplayMobile(mobile, "c1", &jd, engine.MaskIndex(nil)); got != "9xxx5x3xx0" {
		t.Fatalf("expected masked with default window, got %s", got)
	}

	short := NewEngine(Options{Clock: func() time.Time { return now }, MaskWindowDays: 30})
	if got := short.DisplayMobile(mobile, "c1", &jd, short.MaskIndex(nil)); got != mobile {
		t.Fatalf("expected unmasked with 30 day window, got %s", got)
	}
}

func TestLapsedOn(t *testing.T) {
	day := time.Date(2024, time.May, 6, 0, 0, 0, 0, Zone(330))
	if got := LapsedOn(day); !reflect.DeepEqual(got, []string{"2024-05-06", "06-05-2024"}) {
		t.Fatalf("unexpected forms %v", got)
	}
}
