package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// Kind selects which lookup table a resolve call consults.
type Kind string

const (
	KindSubmitter Kind = "submitter"
	KindAssignee  Kind = "assignee"
)

// Organization is one organization mapping row.
type Organization struct {
	Name   string
	Domain string
}

// Resolver exposes point lookups over the reference tables with
// defaulting. Missing ids never produce an error; they resolve to the
// documented fallback value. Safe for concurrent readers once loaded.
type Resolver struct {
	organizations map[string]Organization
	submitters    map[string]string
	assignees     map[string]string
}

// Load reads the three reference tables. A table that is missing or
// malformed degrades to an empty mapping with a logged warning; load
// failure is never fatal to the run.
func Load(orgFile, submitterFile, assigneeFile string, logger *zap.Logger) *Resolver {
	r := &Resolver{
		organizations: make(map[string]Organization),
		submitters:    make(map[string]string),
		assignees:     make(map[string]string),
	}

	if err := loadRows(orgFile, func(row map[string]string) {
		domainName, ok := row["domain_names"]
		if !ok || domainName == "" {
			domainName = domain.UnknownDomain
		}
		r.organizations[row["id"]] = Organization{Name: row["name"], Domain: domainName}
	}); err != nil {
		logger.Warn("failed to load organization mapping", zap.String("file", orgFile), zap.Error(err))
	} else {
		logger.Info("loaded organization mapping", zap.String("file", orgFile), zap.Int("records", len(r.organizations)))
	}

	if err := loadRows(submitterFile, func(row map[string]string) {
		r.submitters[row["id"]] = row["name"]
	}); err != nil {
		logger.Warn("failed to load submitter mapping", zap.String("file", submitterFile), zap.Error(err))
	} else {
		logger.Info("loaded submitter mapping", zap.String("file", submitterFile), zap.Int("records", len(r.submitters)))
	}

	if err := loadRows(assigneeFile, func(row map[string]string) {
		r.assignees[row["id"]] = row["name"]
	}); err != nil {
		logger.Warn("failed to load assignee mapping", zap.String("file", assigneeFile), zap.Error(err))
	} else {
		logger.Info("loaded assignee mapping", zap.String("file", assigneeFile), zap.Int("records", len(r.assignees)))
	}

	return r
}

// Resolve returns the user name for id in the given table, or the
// table's fallback when absent.
func (r *Resolver) Resolve(kind Kind, id string) string {
	switch kind {
	case KindSubmitter:
		if name, ok := r.submitters[id]; ok {
			return name
		}
		return domain.UnknownCreator
	case KindAssignee:
		if name, ok := r.assignees[id]; ok {
			return name
		}
		return domain.UnknownUpdater
	default:
		return domain.UnknownValue
	}
}

// ResolveOrganization returns the organization's name and domain for
// id. An unknown id yields "Unknown Client" and the placeholder domain
// so the derived company site is always well formed.
func (r *Resolver) ResolveOrganization(id string) Organization {
	if org, ok := r.organizations[id]; ok {
		return org
	}
	return Organization{Name: domain.UnknownClient, Domain: "placeholder.com"}
}

// ClientName returns only the organization name for id.
func (r *Resolver) ClientName(id string) string {
	return r.ResolveOrganization(id).Name
}

// CompanySite derives the https site URL from the organization domain.
func (r *Resolver) CompanySite(id string) string {
	return "https://" + r.ResolveOrganization(id).Domain
}

// loadRows streams a CSV file as header-keyed rows.
func loadRows(path string, visit func(row map[string]string)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		visit(row)
	}
}
