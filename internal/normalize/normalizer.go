package normalize

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/childrecords"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/reference"
	"github.com/prash00b/ZenDesk-ETL-pipeline/pkg/util"
)

// lookupKind marks fields whose value is resolved through a reference
// table instead of passing through from the raw record.
type lookupKind int

const (
	lookupNone lookupKind = iota
	lookupOrganization
	lookupSubmitter
	lookupAssignee
)

// fieldMapping is one row of the declarative rename table. Every raw
// field the pipeline consumes appears here exactly once; the generic
// join routine below is the only code that reads raw ticket fields.
type fieldMapping struct {
	source string
	target string
	lookup lookupKind
}

var fieldMappings = []fieldMapping{
	{source: "id", target: "identifier"},
	{source: "created_at", target: "createdDate"},
	{source: "updated_at", target: "updatedDate"},
	{source: "generated_timestamp", target: "generated_timestamp"},
	{source: "subject", target: "title"},
	{source: "description", target: "description"},
	{source: "status", target: "status"},
	{source: "priority", target: "priority"},
	{source: "organization_id", target: "clientName", lookup: lookupOrganization},
	{source: "submitter_id", target: "createdBy", lookup: lookupSubmitter},
	{source: "assignee_id", target: "updatedBy", lookup: lookupAssignee},
	{source: "type", target: "type"},
}

// Normalizer joins raw tickets against the reference tables and
// child-record shards to produce canonical tickets.
type Normalizer struct {
	resolver *reference.Resolver
	children *childrecords.Loader
	logger   *zap.Logger
}

// NewNormalizer constructs the normalizer.
func NewNormalizer(resolver *reference.Resolver, children *childrecords.Loader, logger *zap.Logger) *Normalizer {
	return &Normalizer{resolver: resolver, children: children, logger: logger}
}

// Normalize produces the canonical ticket for one raw record. It never
// panics: any internal failure is recovered and returned as a
// transform error, which the batch worker records against the ticket
// instead of aborting the batch.
func (n *Normalizer) Normalize(raw domain.RawTicket) (ticket domain.CanonicalTicket, err error) {
	ticketID := domain.CoerceString(raw["id"])
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("normalization panic",
				zap.String("ticket_id", ticketID),
				zap.Any("panic", r))
			err = util.NewTransformError(ticketID, fmt.Errorf("panic: %v", r))
		}
	}()

	extracted := n.join(raw)

	orgID, _ := raw.StringField("organization_id")

	ticket = domain.CanonicalTicket{
		CreatedBy:   extracted["createdBy"],
		Identifier:  raw["id"],
		CreatedDate: extracted["createdDate"],
		UpdatedBy:   extracted["updatedBy"],
		UpdatedDate: extracted["updatedDate"],
		Title:       extracted["title"],
		Description: extracted["description"],
		ClientName:  extracted["clientName"],
		CompanySite: n.resolver.CompanySite(orgID),
		Properties: domain.TicketProperties{
			Priority:           extracted["priority"],
			GeneratedTimestamp: extracted["generated_timestamp"],
			Status:             extracted["status"],
			Type:               extracted["type"],
		},
		WorkNotes:   n.workNotes(ticketID),
		TimeEntries: n.timeEntries(ticketID),
	}
	return ticket, nil
}

// join applies the field-mapping table to one raw ticket. Lookup
// fields resolve through the reference tables with their documented
// defaults; everything else passes through with a generic Unknown.
func (n *Normalizer) join(raw domain.RawTicket) map[string]string {
	extracted := make(map[string]string, len(fieldMappings))
	for _, fm := range fieldMappings {
		value, present := raw.StringField(fm.source)
		switch fm.lookup {
		case lookupOrganization:
			extracted[fm.target] = n.resolver.ClientName(value)
		case lookupSubmitter:
			extracted[fm.target] = n.resolver.Resolve(reference.KindSubmitter, value)
		case lookupAssignee:
			extracted[fm.target] = n.resolver.Resolve(reference.KindAssignee, value)
		default:
			if !present {
				value = domain.UnknownValue
			}
			extracted[fm.target] = value
		}
	}
	return extracted
}

// workNotes maps the ticket's comments, or returns the canonical
// default note when the shard lookup fails.
func (n *Normalizer) workNotes(ticketID string) []domain.WorkNote {
	records, ok := n.children.Load(childrecords.KindComments, ticketID)
	if !ok {
		return domain.DefaultWorkNotes()
	}
	notes := make([]domain.WorkNote, 0, len(records))
	for _, rec := range records {
		notes = append(notes, domain.WorkNote{
			Description: stringOr(rec, "body", "Unknown comment text"),
			Date:        stringOr(rec, "created_at", "Unknown date"),
			Type:        visibility(rec),
		})
	}
	return notes
}

// timeEntries maps the ticket's time records, or returns the canonical
// default entry when the shard lookup fails.
func (n *Normalizer) timeEntries(ticketID string) []domain.TimeEntry {
	records, ok := n.children.Load(childrecords.KindTimeEntries, ticketID)
	if !ok {
		return domain.DefaultTimeEntries()
	}
	entries := make([]domain.TimeEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.TimeEntry{
			Description: stringOr(rec, "description", domain.DefaultDesc),
			StartDate:   stringOr(rec, "created_at", domain.DefaultDate),
			EndDate:     stringOr(rec, "updated_at", domain.DefaultDate),
			Type:        visibility(rec),
		})
	}
	return entries
}

// visibility maps the source public flag: External exactly when true.
func visibility(rec childrecords.RawRecord) string {
	if public, ok := rec["public"].(bool); ok && public {
		return "External"
	}
	return "Internal"
}

func stringOr(rec childrecords.RawRecord, key, fallback string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return fallback
	}
	return domain.CoerceString(v)
}
