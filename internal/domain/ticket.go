package domain

import "strconv"

// Fixed fallback values applied throughout normalization and wire
// transformation. These are part of the output contract: downstream
// consumers match on them when auditing ingested records.
const (
	DefaultDate    = "2012-12-15T00:00:00Z"
	DefaultTitle   = "Default Title"
	DefaultDesc    = "Default Description"
	DefaultNote    = "Default Note Title"
	PlaceholderURL = "https://placeholder.com"

	UnknownValue   = "Unknown"
	UnknownClient  = "Unknown Client"
	UnknownCreator = "Unknown Creator"
	UnknownUpdater = "Unknown Updater"
	UnknownDomain  = "Unknown Domain"
)

// RawTicket is one source-system record as decoded from the extracted
// ticket file. Field access goes through helpers because the source
// serializes identifiers as numbers while reference tables key on
// strings.
type RawTicket map[string]any

// ID returns the numeric ticket identifier, or 0 when absent or
// non-numeric.
func (t RawTicket) ID() int64 {
	switch v := t["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// StringField coerces a raw field to its string form. The second
// return reports whether the field was present and non-nil.
func (t RawTicket) StringField(name string) (string, bool) {
	v, ok := t[name]
	if !ok || v == nil {
		return "", false
	}
	return CoerceString(v), true
}

// CoerceString renders an arbitrary decoded JSON value as text.
// Numbers are rendered without a decimal point so they match
// reference-table keys.
func CoerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return UnknownValue
	}
}

// TicketProperties is the coerced-to-text property block carried on
// every canonical ticket.
type TicketProperties struct {
	Priority           string `json:"Priority"`
	GeneratedTimestamp string `json:"Generated_timestamp"`
	Status             string `json:"Status"`
	Type               string `json:"Type"`
}

// WorkNote is one comment mapped into the target schema. Title is only
// populated on the canonical default note.
type WorkNote struct {
	Title       string `json:"Title,omitempty"`
	Description string `json:"Description"`
	Date        string `json:"Date"`
	Type        string `json:"Type"`
}

// TimeEntry is one time-tracking record mapped into the target schema.
type TimeEntry struct {
	Title       string `json:"Title,omitempty"`
	Description string `json:"Description"`
	StartDate   string `json:"StartDate"`
	EndDate     string `json:"EndDate"`
	Type        string `json:"Type"`
}

// CanonicalTicket is the joined, renamed record produced by
// normalization. Identifier keeps the source JSON type so batch files
// round-trip numeric identifiers unchanged.
type CanonicalTicket struct {
	CreatedBy   string           `json:"CreatedBy"`
	Identifier  any              `json:"Identifier"`
	CreatedDate string           `json:"CreatedDate"`
	UpdatedBy   string           `json:"UpdatedBy"`
	UpdatedDate string           `json:"UpdatedDate"`
	Title       string           `json:"Title"`
	Description string           `json:"Description"`
	ClientName  string           `json:"ClientName"`
	CompanySite string           `json:"CompanySite"`
	Properties  TicketProperties `json:"Properties"`
	WorkNotes   []WorkNote       `json:"WorkNotes"`
	TimeEntries []TimeEntry      `json:"TimeEntries"`
}

// IdentifierString renders the ticket identifier as text for logging
// and wire transport.
func (t CanonicalTicket) IdentifierString() string {
	return CoerceString(t.Identifier)
}

// DefaultWorkNotes returns the canonical single-element note sequence
// used when a ticket has no comment shard entry.
func DefaultWorkNotes() []WorkNote {
	return []WorkNote{{
		Title:       DefaultNote,
		Description: DefaultDesc,
		Date:        DefaultDate,
		Type:        "Internal",
	}}
}

// DefaultTimeEntries returns the canonical single-element time-entry
// sequence used when a ticket has no time-entry shard entry.
func DefaultTimeEntries() []TimeEntry {
	return []TimeEntry{{
		Title:       DefaultTitle,
		Description: DefaultDesc,
		StartDate:   DefaultDate,
		EndDate:     DefaultDate,
		Type:        "Internal",
	}}
}
