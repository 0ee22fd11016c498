package domain

import (
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "uploaded"
	StatusApproved DocumentStatus = "approved"
	StatusRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusUploaded, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// LoanDocument is one file attached to a loan. The bytes live with the external
// file store; only metadata and requirement state are tracked here.
type LoanDocument struct {
	ID         string         `json:"id"`
	LoanID     string         `json:"loan_id"`
	Category   string         `json:"category"`
	Status     DocumentStatus `json:"status"`
	IsRequired bool           `json:"is_required"`
	Notes      string         `json:"notes,omitempty"`
	Filename   string         `json:"filename"`
	MimeType   string         `json:"mime_type,omitempty"`
	SizeBytes  int64          `json:"size_bytes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Fulfills reports whether the document counts toward the requirement slot named category.
func (d LoanDocument) Fulfills(category string) bool {
	return d.IsRequired && d.Status != StatusRejected && d.Category == category
}

type DocumentMetadata struct {
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

type RequirementDescriptor struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Category       string `json:"category" yaml:"category"`
	Required       bool   `json:"required" yaml:"required"`
	FunderSpecific bool   `json:"funder_specific" yaml:"funder_specific"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
}

type RequirementKind string

const (
	RequirementCatalog RequirementKind = "catalog"
	RequirementCustom  RequirementKind = "custom"
)

// RequirementRef names a requirement slot either by catalog id or by a
// loan-scoped custom name. The two never compare equal to each other; only
// Key is used when matching document categories.
type RequirementRef struct {
	Kind RequirementKind `json:"kind"`
	Name string          `json:"name"`
}

func CatalogRef(id string) RequirementRef {
	return RequirementRef{Kind: RequirementCatalog, Name: id}
}

func CustomRef(name string) RequirementRef {
	return RequirementRef{Kind: RequirementCustom, Name: name}
}

func (r RequirementRef) Key() string {
	return r.Name
}

func (r RequirementRef) IsCatalog() bool {
	return r.Kind == RequirementCatalog
}

// RequirementSet is the set of category keys a loan currently requires.
type RequirementSet map[string]RequirementRef

func NewRequirementSet(catalogIDs []string, custom []string) RequirementSet {
	set := make(RequirementSet, len(catalogIDs)+len(custom))
	for _, id := range catalogIDs {
		set[id] = CatalogRef(id)
	}
	for _, name := range custom {
		name = NormalizeCustomRequirement(name)
		if name == "" {
			continue
		}
		if _, exists := set[name]; exists {
			continue
		}
		set[name] = CustomRef(name)
	}
	return set
}

func (s RequirementSet) Contains(category string) bool {
	_, ok := s[category]
	return ok
}

func (s RequirementSet) Lookup(category string) (RequirementRef, bool) {
	ref, ok := s[category]
	return ref, ok
}

// NormalizeCustomRequirement trims user-typed requirement names. Matching
// stays exact-string after trimming.
func NormalizeCustomRequirement(name string) string {
	return strings.TrimSpace(name)
}
