package wire

import (
	"time"

	"github.com/google/uuid"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// dateLayouts are tried in order when parsing source timestamps, which
// may carry an offset or be bare local-less stamps.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Transformer maps canonical tickets into the destination envelope.
type Transformer struct {
	integrationUUID string
}

// NewTransformer constructs a transformer for one integration.
func NewTransformer(integrationUUID uuid.UUID) *Transformer {
	return &Transformer{integrationUUID: integrationUUID.String()}
}

// ToWireFormat produces the destination envelope for one ticket:
// context block with the integration identifier, content block with
// UTC-normalized dates, empty permissions list.
func (tr *Transformer) ToWireFormat(ticket domain.CanonicalTicket) domain.WireRecord {
	title := ticket.Title
	if title == "" {
		title = domain.DefaultTitle
	}

	return domain.WireRecord{
		Context: domain.WireContext{IntegrationUuid: tr.integrationUUID},
		Content: domain.WireContent{
			CreatedBy:   ticket.CreatedBy,
			CreatedDate: FormatDate(ticket.CreatedDate),
			UpdatedBy:   ticket.UpdatedBy,
			UpdatedDate: FormatDate(ticket.UpdatedDate),
			ClientName:  ticket.ClientName,
			CompanySite: ticket.CompanySite,
			Identifier:  ticket.IdentifierString(),
			Title:       title,
			Description: ticket.Description,
			WorkNotes:   ticket.WorkNotes,
			TimeEntries: ticket.TimeEntries,
		},
		Permissions: []any{},
	}
}

// FormatDate normalizes a source timestamp to UTC with millisecond
// precision and a literal Z suffix. Unparseable input passes through
// unchanged; downstream consumers tolerate non-normalized timestamps.
func FormatDate(value string) string {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC().Format("2006-01-02T15:04:05.000") + "Z"
		}
	}
	return value
}
