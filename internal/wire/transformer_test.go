package wire

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

func TestFormatDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"utc offset", "2021-01-01T10:00:00+00:00", "2021-01-01T10:00:00.000Z"},
		{"positive offset", "2021-06-01T12:30:00+02:00", "2021-06-01T10:30:00.000Z"},
		{"zulu", "2021-01-01T10:00:00Z", "2021-01-01T10:00:00.000Z"},
		{"fractional", "2021-01-01T10:00:00.123456+00:00", "2021-01-01T10:00:00.123Z"},
		{"bare stamp", "2021-01-01T10:00:00", "2021-01-01T10:00:00.000Z"},
		{"unparseable passes through", "not a date", "not a date"},
		{"empty passes through", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDate(tc.in); got != tc.want {
				t.Fatalf("FormatDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestToWireFormatEnvelope(t *testing.T) {
	integration := uuid.MustParse("3f2f36cc-60a0-4b6b-9aa0-5f2e7f0b7f11")
	tr := NewTransformer(integration)

	record := tr.ToWireFormat(domain.CanonicalTicket{
		CreatedBy:   "Jane",
		Identifier:  float64(100),
		CreatedDate: "2021-01-01T10:00:00+00:00",
		UpdatedBy:   "Priya",
		UpdatedDate: "garbage",
		Title:       "Printer down",
		Description: "It broke",
		ClientName:  "Acme",
		CompanySite: "https://acme.com",
		WorkNotes:   domain.DefaultWorkNotes(),
		TimeEntries: domain.DefaultTimeEntries(),
	})

	if record.Context.IntegrationUuid != integration.String() {
		t.Fatalf("integration uuid = %q", record.Context.IntegrationUuid)
	}
	if record.Content.Identifier != "100" {
		t.Fatalf("identifier = %q, want the string 100", record.Content.Identifier)
	}
	if record.Content.CreatedDate != "2021-01-01T10:00:00.000Z" {
		t.Fatalf("created date = %q", record.Content.CreatedDate)
	}
	if record.Content.UpdatedDate != "garbage" {
		t.Fatalf("unparseable updated date = %q, want pass-through", record.Content.UpdatedDate)
	}
	if len(record.Permissions) != 0 {
		t.Fatalf("permissions = %v, want empty", record.Permissions)
	}

	// Permissions must serialize as [] rather than null.
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"Permissions":[]`) {
		t.Fatalf("serialized record missing empty permissions list: %s", data)
	}
}

func TestToWireFormatTitleFallback(t *testing.T) {
	tr := NewTransformer(uuid.Nil)

	record := tr.ToWireFormat(domain.CanonicalTicket{Identifier: float64(1), Title: ""})
	if record.Content.Title != "Default Title" {
		t.Fatalf("empty title = %q, want Default Title", record.Content.Title)
	}

	record = tr.ToWireFormat(domain.CanonicalTicket{Identifier: float64(1), Title: "Unknown"})
	if record.Content.Title != "Unknown" {
		t.Fatalf("non-empty title = %q, want Unknown preserved", record.Content.Title)
	}
}
