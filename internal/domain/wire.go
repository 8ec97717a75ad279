package domain

// WireContext carries the destination integration identity on every
// delivered record.
type WireContext struct {
	IntegrationUuid string `json:"IntegrationUuid"`
}

// WireContent is the content block of the destination envelope. All
// dates are UTC with millisecond precision; Identifier is always text.
type WireContent struct {
	CreatedBy   string      `json:"CreatedBy"`
	CreatedDate string      `json:"CreatedDate"`
	UpdatedBy   string      `json:"UpdatedBy"`
	UpdatedDate string      `json:"UpdatedDate"`
	ClientName  string      `json:"ClientName"`
	CompanySite string      `json:"CompanySite"`
	Identifier  string      `json:"Identifier"`
	Title       string      `json:"Title"`
	Description string      `json:"Description"`
	WorkNotes   []WorkNote  `json:"WorkNotes"`
	TimeEntries []TimeEntry `json:"TimeEntries"`
}

// WireRecord is the exact JSON shape POSTed to the destination API.
type WireRecord struct {
	Context     WireContext `json:"Context"`
	Content     WireContent `json:"Content"`
	Permissions []any       `json:"Permissions"`
}
