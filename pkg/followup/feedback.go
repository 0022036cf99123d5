package followup

import (
	"regexp"
	"strings"
	"time"
)

// Delimiter separates entries in the serialized feedback log.
const Delimiter = "||"

// escapeChar protects ':' and '|' inside written values so free text can never
// open a new field or entry. Logs written before escaping parse as before.
const escapeChar = '\\'

// Field names one value carried by a feedback entry.
type Field string

const (
	FieldRemarks    Field = "Remarks"
	FieldNFD        Field = "NFD"
	FieldEJD        Field = "EJD"
	FieldIFD        Field = "IFD"
	FieldCallStatus Field = "Call Status"
	FieldEnteredBy  Field = "Entered By"
	FieldNote       Field = "Feedback"
	FieldEntryTime  Field = "Entry Time"
)

// wireOrder is the order fields are written in. Parsing does not depend on it.
var wireOrder = []Field{
	FieldRemarks,
	FieldNFD,
	FieldEJD,
	FieldIFD,
	FieldCallStatus,
	FieldEnteredBy,
	FieldNote,
	FieldEntryTime,
}

// labels sorted longest first so "Entered By" never loses to a shorter prefix.
var labels = []Field{
	FieldCallStatus,
	FieldEnteredBy,
	FieldEntryTime,
	FieldRemarks,
	FieldNote,
	FieldNFD,
	FieldEJD,
	FieldIFD,
}

const (
	wireTimeLayout       = "02-01-2006 15:04:05"
	normalizedTimeLayout = "2006-01-02T15:04:05"
)

var wireTimeRe = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4}) (\d{2}):(\d{2}):(\d{2})$`)

// FeedbackEntry is one immutable audit point of an assignment's history.
// EntryTime holds YYYY-MM-DDTHH:MM:SS when the logged value was well formed and
// the raw text otherwise.
type FeedbackEntry struct {
	Remarks    string `json:"remarks"`
	NFD        string `json:"nfd"`
	EJD        string `json:"ejd"`
	IFD        string `json:"ifd"`
	CallStatus string `json:"call_status"`
	EnteredBy  string `json:"entered_by"`
	Note       string `json:"note,omitempty"`
	EntryTime  string `json:"entry_time"`
}

// Get returns the value of field, or "" for unknown fields.
func (e FeedbackEntry) Get(field Field) string {
	switch field {
	case FieldRemarks:
		return e.Remarks
	case FieldNFD:
		return e.NFD
	case FieldEJD:
		return e.EJD
	case FieldIFD:
		return e.IFD
	case FieldCallStatus:
		return e.CallStatus
	case FieldEnteredBy:
		return e.EnteredBy
	case FieldNote:
		return e.Note
	case FieldEntryTime:
		return e.EntryTime
	default:
		return ""
	}
}

func (e *FeedbackEntry) set(field Field, value string) {
	switch field {
	case FieldRemarks:
		e.Remarks = value
	case FieldNFD:
		e.NFD = value
	case FieldEJD:
		e.EJD = value
	case FieldIFD:
		e.IFD = value
	case FieldCallStatus:
		e.CallStatus = value
	case FieldEnteredBy:
		e.EnteredBy = value
	case FieldNote:
		e.Note = value
	case FieldEntryTime:
		e.EntryTime = NormalizeEntryTime(value)
	}
}

// Timestamp parses EntryTime. ok is false when the value is not a valid
// normalized timestamp.
func (e FeedbackEntry) Timestamp() (time.Time, bool) {
	ts, err := time.Parse(normalizedTimeLayout, strings.TrimSpace(e.EntryTime))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// NormalizeEntryTime rewrites DD-MM-YYYY HH:MM:SS into YYYY-MM-DDTHH:MM:SS and
// leaves any other value untouched.
func NormalizeEntryTime(raw string) string {
	trimmed := strings.TrimSpace(raw)
	m := wireTimeRe.FindStringSubmatch(trimmed)
	if m == nil {
		return trimmed
	}
	return m[3] + "-" + m[2] + "-" + m[1] + "T" + m[4] + ":" + m[5] + ":" + m[6]
}

// FormatEntryTime renders t the way entry times are logged.
func FormatEntryTime(t time.Time) string {
	return t.Format(wireTimeLayout)
}

type marker struct {
	field      Field
	sepStart   int
	valueStart int
}

// ParseFeedbackLog decodes the serialized log into entries in log order. Blank
// entries are dropped and missing fields resolve to "". It never fails.
func ParseFeedbackLog(raw string) []FeedbackEntry {
	parts := splitEntries(raw)
	entries := make([]FeedbackEntry, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		entries = append(entries, parseEntry(part))
	}
	return entries
}

func parseEntry(text string) FeedbackEntry {
	markers := findMarkers(text)
	var entry FeedbackEntry
	seen := make(map[Field]bool, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].sepStart
		}
		if seen[m.field] {
			continue
		}
		seen[m.field] = true
		value := unescapeValue(strings.TrimSpace(text[m.valueStart:end]))
		entry.set(m.field, value)
	}
	return entry
}

// findMarkers locates "<Label>-" occurrences that begin the entry or directly
// follow an unescaped ':' separator.
func findMarkers(text string) []marker {
	var markers []marker
	try := func(sepStart, pos int) {
		pos = skipSpaces(text, pos)
		for _, label := range labels {
			l := len(label)
			if pos+l > len(text) || !strings.EqualFold(text[pos:pos+l], string(label)) {
				continue
			}
			dash := skipSpaces(text, pos+l)
			if dash >= len(text) || text[dash] != '-' {
				continue
			}
			markers = append(markers, marker{field: label, sepStart: sepStart, valueStart: dash + 1})
			return
		}
	}

	try(0, 0)
	for i := 0; i < len(text); i++ {
		if escapedAt(text, i) {
			i++
			continue
		}
		if text[i] == ':' {
			try(i, i+1)
		}
	}
	return markers
}

// splitEntries splits raw on Delimiter, skipping escaped pipes.
func splitEntries(raw string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if escapedAt(raw, i) {
			i++
			continue
		}
		if strings.HasPrefix(raw[i:], Delimiter) {
			parts = append(parts, raw[start:i])
			i += len(Delimiter) - 1
			start = i + 1
		}
	}
	return append(parts, raw[start:])
}

func escapedAt(text string, i int) bool {
	return text[i] == escapeChar && i+1 < len(text) && escapable(text[i+1])
}

func escapable(c byte) bool {
	return c == escapeChar || c == ':' || c == '|'
}

func escapeValue(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if escapable(value[i]) {
			b.WriteByte(escapeChar)
		}
		b.WriteByte(value[i])
	}
	return b.String()
}

func unescapeValue(value string) string {
	if strings.IndexByte(value, escapeChar) < 0 {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if escapedAt(value, i) {
			i++
		}
		b.WriteByte(value[i])
	}
	return b.String()
}

func skipSpaces(text string, pos int) int {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t' || text[pos] == '\n' || text[pos] == '\r') {
		pos++
	}
	return pos
}

// LatestValue returns field from the entry with the greatest entry time. Entries
// with unparseable times rank below every valid one; ties go to the entry
// appended last.
func LatestValue(entries []FeedbackEntry, field Field) string {
	latest, ok := Latest(entries)
	if !ok {
		return ""
	}
	return strings.TrimSpace(latest.Get(field))
}

// Latest returns the most recent entry.
func Latest(entries []FeedbackEntry) (FeedbackEntry, bool) {
	if len(entries) == 0 {
		return FeedbackEntry{}, false
	}
	best := -1
	var bestTS time.Time
	for i, entry := range entries {
		ts, _ := entry.Timestamp()
		if best == -1 || !ts.Before(bestTS) {
			best = i
			bestTS = ts
		}
	}
	return entries[best], true
}

// NewestFirst returns a copy of entries ordered for display, newest first.
func NewestFirst(entries []FeedbackEntry) []FeedbackEntry {
	type ranked struct {
		entry FeedbackEntry
		ts    time.Time
		index int
	}
	ordered := make([]ranked, len(entries))
	for i, entry := range entries {
		ts, _ := entry.Timestamp()
		ordered[i] = ranked{entry: entry, ts: ts, index: i}
	}
	// insertion sort keeps equal timestamps in reverse log order
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && !ordered[j].ts.Before(ordered[j-1].ts); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	out := make([]FeedbackEntry, len(ordered))
	for i, r := range ordered {
		out[i] = r.entry
	}
	return out
}

// FormatFeedbackEntry serializes one entry in the log wire format. Normalized
// entry times are written back as DD-MM-YYYY HH:MM:SS; every other value is
// escaped so it reads back unchanged.
func FormatFeedbackEntry(entry FeedbackEntry) string {
	parts := make([]string, 0, len(wireOrder))
	for _, field := range wireOrder {
		value := sanitizeValue(entry.Get(field))
		if field == FieldNote && value == "" {
			continue
		}
		if field == FieldEntryTime {
			if ts, ok := entry.Timestamp(); ok {
				value = FormatEntryTime(ts)
			}
		}
		parts = append(parts, string(field)+"-"+value)
	}
	return strings.Join(parts, ":")
}

// AppendFeedback returns raw with entry appended. raw itself is never
// rewritten apart from trailing delimiters.
func AppendFeedback(raw string, entry FeedbackEntry) string {
	formatted := FormatFeedbackEntry(entry)
	trimmed := strings.TrimSpace(raw)
	for strings.HasSuffix(trimmed, Delimiter) {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, Delimiter))
	}
	if trimmed == "" {
		return formatted
	}
	return trimmed + Delimiter + formatted
}

func sanitizeValue(value string) string {
	return escapeValue(strings.Join(strings.Fields(value), " "))
}
