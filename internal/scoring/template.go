package scoring

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ahrav/go-compare/internal/domain"
)

// IDGenerator produces criterion IDs for template application.
type IDGenerator func() string

// ApplyTemplate deep-clones templateCriteria into a fresh criteria list for a
// comparative. Every criterion gets a new UUID, keeps its name, type,
// weight, direction, visibility, bounds, unit and options, and takes its
// Order from its position in the list (0..N-1).
//
// Item values are not touched. Existing items simply lack values for the new
// criteria until an editor fills them in.
func ApplyTemplate(templateCriteria []domain.Criterion) []domain.Criterion {
	return ApplyTemplateWithIDs(templateCriteria, uuid.NewString)
}

// ApplyTemplateWithIDs is ApplyTemplate with a caller-supplied ID generator.
// Generated IDs that are empty, repeat an earlier one, or collide with an ID
// already in the template are replaced by a random UUID.
func ApplyTemplateWithIDs(templateCriteria []domain.Criterion, gen IDGenerator) []domain.Criterion {
	if gen == nil {
		gen = uuid.NewString
	}

	taken := make(map[string]struct{}, 2*len(templateCriteria))
	for _, c := range templateCriteria {
		taken[c.ID] = struct{}{}
	}

	out := make([]domain.Criterion, len(templateCriteria))
	for i, c := range templateCriteria {
		id := gen()
		for {
			if _, dup := taken[id]; id != "" && !dup {
				break
			}
			id = uuid.NewString()
		}
		taken[id] = struct{}{}

		clone := c.Clone()
		clone.ID = id
		clone.Order = i
		out[i] = clone
	}
	return out
}

// NewTemplate snapshots criteria into a named template. Criteria are copied
// in Order and renumbered from 0 so the template is independent of the
// comparative it came from.
func NewTemplate(name, description string, criteria []domain.Criterion) (domain.Template, error) {
	snapshot := domain.CloneCriteria(criteria)
	sort.SliceStable(snapshot, func(i, j int) bool { return snapshot[i].Order < snapshot[j].Order })
	for i := range snapshot {
		snapshot[i].Order = i
	}

	t := domain.Template{
		Name:        name,
		Description: description,
		Criteria:    snapshot,
	}
	if err := ValidateTemplate(t); err != nil {
		return domain.Template{}, err
	}
	return t, nil
}
