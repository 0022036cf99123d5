package followup

import (
	"strings"
	"time"
)

// Record is the assignment shape exchanged with the backend. ToAssignment is the
// only place the raw feedback string is decoded. The backend's remarks column
// is a copy of the latest logged remark and is not read; the log is
// authoritative.
type Record struct {
	CandidateID         string          `json:"candidate_id"`
	ClientJobID         string          `json:"client_job_id"`
	ProfileStatus       string          `json:"profilestatus"`
	NextFollowUpDate    string          `json:"next_follow_up_date"`
	InterviewDate       string          `json:"interview_date"`
	ExpectedJoiningDate string          `json:"expected_joining_date"`
	Feedback            string          `json:"feedback"`
	Revenue             []RevenueRecord `json:"revenue"`
}

// RevenueRecord is one placement row attached to a record.
type RevenueRecord struct {
	JoiningDate string `json:"joining_date"`
}

// ToAssignment parses the record. The joining date is the earliest readable one
// among its revenue rows.
func (r Record) ToAssignment(loc *time.Location) Assignment {
	a := Assignment{
		CandidateID:         strings.TrimSpace(r.CandidateID),
		ClientJobID:         strings.TrimSpace(r.ClientJobID),
		ProfileStatus:       strings.TrimSpace(r.ProfileStatus),
		NextFollowUpDate:    strings.TrimSpace(r.NextFollowUpDate),
		InterviewDate:       strings.TrimSpace(r.InterviewDate),
		ExpectedJoiningDate: strings.TrimSpace(r.ExpectedJoiningDate),
		Feedback:            ParseFeedbackLog(r.Feedback),
	}
	for _, rev := range r.Revenue {
		jd, ok := ParseCalendarDate(rev.JoiningDate, loc)
		if !ok {
			continue
		}
		if a.JoiningDate == nil || jd.Before(*a.JoiningDate) {
			day := jd
			a.JoiningDate = &day
		}
	}
	return a
}
