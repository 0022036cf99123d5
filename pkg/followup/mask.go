package followup

import (
	"strings"
	"time"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
)

// DefaultMaskWindowDays is how long a placement keeps its number hidden.
const DefaultMaskWindowDays = 100

// MaskRecord is one row contributing to the mask index: a number seen on some
// assignment with its status, plus any joining dates recorded for it. Holder
// identifies the candidate the row belongs to.
type MaskRecord struct {
	Mobile        string
	Holder        string
	ProfileStatus enums.ProfileStatus
	JoiningDates  []time.Time
}

// MaskIndex is built once per result batch and shared by every row.
type MaskIndex struct {
	taken        map[string]map[string]struct{}
	joiningDates map[string][]time.Time
	window       time.Duration
}

// BuildMaskIndex aggregates records into the taken set and per-number joining
// dates. Abscond records never mark a number as taken.
func BuildMaskIndex(records []MaskRecord) MaskIndex {
	idx := MaskIndex{
		taken:        make(map[string]map[string]struct{}),
		joiningDates: make(map[string][]time.Time),
		window:       DefaultMaskWindowDays * 24 * time.Hour,
	}
	for _, rec := range records {
		number := normalizeMobile(rec.Mobile)
		if number == "" {
			continue
		}
		if rec.ProfileStatus.TakesMobile() {
			holders, ok := idx.taken[number]
			if !ok {
				holders = make(map[string]struct{})
				idx.taken[number] = holders
			}
			holders[rec.Holder] = struct{}{}
		}
		idx.joiningDates[number] = append(idx.joiningDates[number], rec.JoiningDates...)
	}
	return idx
}

// WithWindowDays returns a copy of the index using a different mask window.
func (idx MaskIndex) WithWindowDays(days int) MaskIndex {
	if days > 0 {
		idx.window = time.Duration(days) * 24 * time.Hour
	}
	return idx
}

// Taken reports whether some Joined or Selected record carries number.
func (idx MaskIndex) Taken(number string) bool {
	return len(idx.taken[normalizeMobile(number)]) > 0
}

// TakenByOther reports whether a Joined or Selected record held by a candidate
// other than holder carries number.
func (idx MaskIndex) TakenByOther(number, holder string) bool {
	for h := range idx.taken[normalizeMobile(number)] {
		if h != holder {
			return true
		}
	}
	return false
}

func (idx MaskIndex) windowOrDefault() time.Duration {
	if idx.window <= 0 {
		return DefaultMaskWindowDays * 24 * time.Hour
	}
	return idx.window
}

// DisplayMobile decides whether number is shown in full. The first matching
// rule wins:
//  1. a joining date for the number at least one window old unmasks it
//  2. the candidate's own joining date inside the window masks it
//  3. a Joined or Selected record held by another candidate masks it
//  4. otherwise it is shown
//
// holder is the candidate being rendered; its own records never count as taken.
func DisplayMobile(number, holder string, candidateJoiningDate *time.Time, idx MaskIndex, now time.Time) string {
	window := idx.windowOrDefault()
	key := normalizeMobile(number)

	for _, jd := range idx.joiningDates[key] {
		if now.Sub(jd) >= window {
			return number
		}
	}
	if candidateJoiningDate != nil && now.Sub(*candidateJoiningDate) < window {
		return MaskMobile(number)
	}
	if idx.TakenByOther(key, holder) {
		return MaskMobile(number)
	}
	return number
}

var keptMaskPositions = map[int]bool{0: true, 4: true, 6: true, 9: true}

// MaskMobile hides a 10-digit number keeping positions 0, 4, 6 and 9. Anything
// else is returned unchanged.
func MaskMobile(number string) string {
	if len(number) != 10 || !allDigits(number) {
		return number
	}
	masked := []byte(number)
	for i := range masked {
		if !keptMaskPositions[i] {
			masked[i] = 'x'
		}
	}
	return string(masked)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func normalizeMobile(number string) string {
	return strings.TrimSpace(number)
}
