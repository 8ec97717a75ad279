package reference

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolveKnownAndUnknownUsers(t *testing.T) {
	dir := t.TempDir()
	submitters := writeFile(t, dir, "submitters.csv", "id,name\n9,Jane\n10,Omar\n")
	assignees := writeFile(t, dir, "assignees.csv", "id,name\n3,Priya\n")

	r := Load(filepath.Join(dir, "missing.csv"), submitters, assignees, zap.NewNop())

	if got := r.Resolve(KindSubmitter, "9"); got != "Jane" {
		t.Fatalf("submitter 9 = %q, want Jane", got)
	}
	if got := r.Resolve(KindSubmitter, "404"); got != "Unknown Creator" {
		t.Fatalf("unknown submitter = %q, want Unknown Creator", got)
	}
	if got := r.Resolve(KindAssignee, "3"); got != "Priya" {
		t.Fatalf("assignee 3 = %q, want Priya", got)
	}
	if got := r.Resolve(KindAssignee, "404"); got != "Unknown Updater" {
		t.Fatalf("unknown assignee = %q, want Unknown Updater", got)
	}
}

func TestResolveOrganizationDefaults(t *testing.T) {
	dir := t.TempDir()
	orgs := writeFile(t, dir, "orgs.csv", "id,name,domain_names\n5,Acme,acme.com\n7,NoDomain,\n")
	users := writeFile(t, dir, "users.csv", "id,name\n")

	r := Load(orgs, users, users, zap.NewNop())

	if got := r.ClientName("5"); got != "Acme" {
		t.Fatalf("client name = %q, want Acme", got)
	}
	if got := r.CompanySite("5"); got != "https://acme.com" {
		t.Fatalf("company site = %q, want https://acme.com", got)
	}
	// A known organization without a domain keeps the Unknown Domain
	// marker; only unknown ids fall back to the placeholder site.
	if got := r.CompanySite("7"); got != "https://Unknown Domain" {
		t.Fatalf("domainless site = %q, want https://Unknown Domain", got)
	}
	if got := r.ClientName("404"); got != "Unknown Client" {
		t.Fatalf("unknown client = %q, want Unknown Client", got)
	}
	if got := r.CompanySite("404"); got != "https://placeholder.com" {
		t.Fatalf("unknown site = %q, want https://placeholder.com", got)
	}
}

func TestLoadMissingTablesDegradesToEmpty(t *testing.T) {
	r := Load("nope.csv", "nope.csv", "nope.csv", zap.NewNop())

	if got := r.Resolve(KindSubmitter, "1"); got != "Unknown Creator" {
		t.Fatalf("resolve on empty mapping = %q, want Unknown Creator", got)
	}
	if got := r.CompanySite("1"); got != "https://placeholder.com" {
		t.Fatalf("site on empty mapping = %q, want placeholder", got)
	}
}
