// Package catalog holds the per-lender document requirement tables.
//
// A Catalog is built once at process start and never mutated afterwards;
// every read returns a copy. Loan-scoped custom requirements are not part of
// the catalog and live with the loan session instead.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

const DefaultStage = "Documents"

// LenderOverlay describes how one lender's list differs from the baseline.
type LenderOverlay struct {
	Name         string                         `yaml:"name"`
	Overrides    []RequiredOverride             `yaml:"overrides,omitempty"`
	Requirements []domain.RequirementDescriptor `yaml:"requirements,omitempty"`
}

type RequiredOverride struct {
	ID       string `yaml:"id"`
	Required bool   `yaml:"required"`
}

type lenderEntry struct {
	name         string
	requirements []domain.RequirementDescriptor
}

type Catalog struct {
	baseline []domain.RequirementDescriptor
	lenders  map[string]lenderEntry
	stages   map[string]string
}

// New resolves every overlay against the baseline and validates that ids are
// unique within each resulting list.
func New(baseline []domain.RequirementDescriptor, overlays []LenderOverlay, stages map[string]string) (*Catalog, error) {
	if err := validateUnique("baseline", baseline); err != nil {
		return nil, err
	}

	c := &Catalog{
		baseline: cloneDescriptors(baseline),
		lenders:  make(map[string]lenderEntry, len(overlays)),
		stages:   make(map[string]string, len(stages)),
	}
	for id, stage := range stages {
		c.stages[id] = stage
	}

	for _, overlay := range overlays {
		name := strings.TrimSpace(overlay.Name)
		if name == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog", errors.New("lender overlay without name"))
		}
		key := lenderKey(name)
		if _, exists := c.lenders[key]; exists {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog", fmt.Errorf("duplicate lender %q", name))
		}
		resolved, err := resolveOverlay(c.baseline, overlay)
		if err != nil {
			return nil, err
		}
		c.lenders[key] = lenderEntry{name: name, requirements: resolved}
	}
	return c, nil
}

func resolveOverlay(baseline []domain.RequirementDescriptor, overlay LenderOverlay) ([]domain.RequirementDescriptor, error) {
	out := cloneDescriptors(baseline)
	index := make(map[string]int, len(out))
	for i, req := range out {
		index[req.ID] = i
	}

	for _, override := range overlay.Overrides {
		i, ok := index[override.ID]
		if !ok {
			return nil, domain.WrapError(
				domain.ErrInvalidInput,
				"build catalog",
				fmt.Errorf("lender %q overrides unknown requirement %q", overlay.Name, override.ID),
			)
		}
		out[i].Required = override.Required
	}

	for _, req := range overlay.Requirements {
		req.FunderSpecific = true
		if req.Name == "" {
			req.Name = req.ID
		}
		out = append(out, req)
	}

	if err := validateUnique(overlay.Name, out); err != nil {
		return nil, err
	}
	return out, nil
}

func validateUnique(scope string, reqs []domain.RequirementDescriptor) error {
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if strings.TrimSpace(req.ID) == "" {
			return domain.WrapError(domain.ErrInvalidInput, "build catalog", fmt.Errorf("%s: requirement without id", scope))
		}
		if _, dup := seen[req.ID]; dup {
			return domain.WrapError(domain.ErrInvalidInput, "build catalog", fmt.Errorf("%s: duplicate requirement id %q", scope, req.ID))
		}
		seen[req.ID] = struct{}{}
	}
	return nil
}

// RequirementsForFunder returns the ordered list for lender, falling back to
// the baseline for unknown lenders.
func (c *Catalog) RequirementsForFunder(lender string) []domain.RequirementDescriptor {
	if reqs, ok := c.Lookup(lender); ok {
		return reqs
	}
	return cloneDescriptors(c.baseline)
}

// Lookup is the strict variant of RequirementsForFunder.
func (c *Catalog) Lookup(lender string) ([]domain.RequirementDescriptor, bool) {
	entry, ok := c.lenders[lenderKey(lender)]
	if !ok {
		return nil, false
	}
	return cloneDescriptors(entry.requirements), true
}

func (c *Catalog) RequiredDocumentCount(lender string) int {
	n := 0
	for _, req := range c.RequirementsForFunder(lender) {
		if req.Required {
			n++
		}
	}
	return n
}

// RequiredIDs lists the required ids of a known lender in catalog order.
// Unknown lenders have no required ids.
func (c *Catalog) RequiredIDs(lender string) []string {
	reqs, ok := c.Lookup(lender)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if req.Required {
			ids = append(ids, req.ID)
		}
	}
	return ids
}

func (c *Catalog) StageFor(id string) string {
	if stage, ok := c.stages[id]; ok && stage != "" {
		return stage
	}
	return DefaultStage
}

// Lenders returns the display names of every known lender, sorted.
func (c *Catalog) Lenders() []string {
	out := make([]string, 0, len(c.lenders))
	for _, entry := range c.lenders {
		out = append(out, entry.name)
	}
	sort.Strings(out)
	return out
}

// Merge returns a new catalog with extra overlays and stage entries added.
// Overlays naming an existing lender replace it.
func (c *Catalog) Merge(overlays []LenderOverlay, stages map[string]string) (*Catalog, error) {
	mergedStages := make(map[string]string, len(c.stages)+len(stages))
	for id, stage := range c.stages {
		mergedStages[id] = stage
	}
	for id, stage := range stages {
		mergedStages[id] = stage
	}

	replaced := make(map[string]struct{}, len(overlays))
	for _, overlay := range overlays {
		replaced[lenderKey(overlay.Name)] = struct{}{}
	}

	next, err := New(c.baseline, overlays, mergedStages)
	if err != nil {
		return nil, err
	}
	for key, entry := range c.lenders {
		if _, ok := replaced[key]; ok {
			continue
		}
		next.lenders[key] = entry
	}
	return next, nil
}

func lenderKey(lender string) string {
	return strings.ToLower(strings.TrimSpace(lender))
}

func cloneDescriptors(in []domain.RequirementDescriptor) []domain.RequirementDescriptor {
	out := make([]domain.RequirementDescriptor, len(in))
	copy(out, in)
	return out
}
