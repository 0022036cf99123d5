package followup

import "time"

// Options configures an Engine. A nil Clock uses time.Now.
type Options struct {
	Clock          func() time.Time
	OffsetMinutes  int
	MaskWindowDays int
}

// Engine binds the lifecycle rules to a clock and a local offset so services
// never read the system clock themselves.
type Engine struct {
	clock          func() time.Time
	offsetMinutes  int
	maskWindowDays int
	loc            *time.Location
}

func NewEngine(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	window := opts.MaskWindowDays
	if window <= 0 {
		window = DefaultMaskWindowDays
	}
	return &Engine{
		clock:          clock,
		offsetMinutes:  opts.OffsetMinutes,
		maskWindowDays: window,
		loc:            Zone(opts.OffsetMinutes),
	}
}

// Now returns the current instant in the engine's local zone.
func (e *Engine) Now() time.Time {
	return e.clock().In(e.loc)
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) OffsetMinutes() int {
	return e.offsetMinutes
}

func (e *Engine) IsAssignable(a Assignment) bool {
	return IsAssignable(a, e.Now())
}

// NextFollowUpDate is the follow-up date a reassignment made now would set.
func (e *Engine) NextFollowUpDate() string {
	return GenerateFollowUpDate(e.clock(), e.offsetMinutes)
}

func (e *Engine) Reassign(a Assignment, from, to Executive, enteredBy, note string) (AssignmentUpdate, error) {
	return Reassign(a, from, to, enteredBy, note, e.clock(), e.offsetMinutes)
}

// NewEntry stamps an entry with the current local time.
func (e *Engine) NewEntry(entry FeedbackEntry) FeedbackEntry {
	entry.EntryTime = e.Now().Format(normalizedTimeLayout)
	return entry
}

// MaskIndex builds a batch index using the configured window.
func (e *Engine) MaskIndex(records []MaskRecord) MaskIndex {
	return BuildMaskIndex(records).WithWindowDays(e.maskWindowDays)
}

func (e *Engine) DisplayMobile(number, holder string, candidateJoiningDate *time.Time, idx MaskIndex) string {
	return DisplayMobile(number, holder, candidateJoiningDate, idx, e.Now())
}

// ParseRecord decodes a backend record in the engine's zone.
func (e *Engine) ParseRecord(r Record) Assignment {
	return r.ToAssignment(e.loc)
}

// LapsedOn returns the stored date forms of day, the day whose follow-ups
// expire at the following midnight.
func LapsedOn(day time.Time) []string {
	return []string{day.Format(dateLayout), day.Format("02-01-2006")}
}
