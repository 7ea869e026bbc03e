package scoring

import (
	"fmt"
	"sort"

	"github.com/ahrav/go-compare/internal/domain"
)

// The helpers below implement the structural edits an editor can make.
// Each returns new slices, leaves its inputs untouched, and keeps Order dense
// (0..N-1) so display order and iteration order stay in step. Callers run a
// recompute after every edit.

// AddCriterion validates c and appends it after the existing criteria.
func AddCriterion(criteria []domain.Criterion, c domain.Criterion) ([]domain.Criterion, error) {
	for _, existing := range criteria {
		if existing.ID == c.ID {
			return nil, fmt.Errorf("%w: criterion %q", ErrDuplicateID, c.ID)
		}
	}

	out := sortedCriteria(criteria)
	c = c.Clone()
	c.Order = len(out)
	if err := ValidateCriterion(c); err != nil {
		return nil, err
	}
	return append(out, c), nil
}

// RemoveCriterion drops the criterion and every item value that refers to it.
func RemoveCriterion(
	criteria []domain.Criterion,
	items []domain.Item,
	id string,
) ([]domain.Criterion, []domain.Item, error) {
	out := make([]domain.Criterion, 0, len(criteria))
	found := false
	for _, c := range sortedCriteria(criteria) {
		if c.ID == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: criterion %q", domain.ErrNotFound, id)
	}
	renumberCriteria(out)

	cleaned := domain.CloneItems(items)
	for i := range cleaned {
		delete(cleaned[i].Values, id)
	}
	return out, cleaned, nil
}

// MoveCriterion moves the criterion at display position from to position to.
func MoveCriterion(criteria []domain.Criterion, from, to int) ([]domain.Criterion, error) {
	out := sortedCriteria(criteria)
	if err := move(out, from, to); err != nil {
		return nil, err
	}
	renumberCriteria(out)
	return out, nil
}

// SetCriterionVisibility shows or hides a criterion.
func SetCriterionVisibility(criteria []domain.Criterion, id string, visible bool) ([]domain.Criterion, error) {
	return updateCriterion(criteria, id, func(c *domain.Criterion) { c.IsVisible = visible })
}

// SetCriterionWeight changes one weight. Out-of-range weights are rejected;
// the sum of visible weights is not enforced here.
func SetCriterionWeight(criteria []domain.Criterion, id string, weight int) ([]domain.Criterion, error) {
	out, err := updateCriterion(criteria, id, func(c *domain.Criterion) { c.Weight = weight })
	if err != nil {
		return nil, err
	}
	if err := ValidateWeights(out); err != nil {
		return nil, err
	}
	return out, nil
}

func updateCriterion(
	criteria []domain.Criterion,
	id string,
	fn func(*domain.Criterion),
) ([]domain.Criterion, error) {
	out := domain.CloneCriteria(criteria)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: criterion %q", domain.ErrNotFound, id)
}

// AddItem appends item after the existing items.
func AddItem(items []domain.Item, item domain.Item) ([]domain.Item, error) {
	if item.ID == "" {
		return nil, fmt.Errorf("item id is required")
	}
	for _, existing := range items {
		if existing.ID == item.ID {
			return nil, fmt.Errorf("%w: item %q", ErrDuplicateID, item.ID)
		}
	}

	out := sortedItems(items)
	item = item.Clone()
	item.Order = len(out)
	if item.Values == nil {
		item.Values = make(map[string]domain.CriterionValue)
	}
	return append(out, item), nil
}

// RemoveItem drops the item with the given ID.
func RemoveItem(items []domain.Item, id string) ([]domain.Item, error) {
	out := make([]domain.Item, 0, len(items))
	found := false
	for _, it := range sortedItems(items) {
		if it.ID == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	if !found {
		return nil, fmt.Errorf("%w: item %q", domain.ErrNotFound, id)
	}
	renumberItems(out)
	return out, nil
}

// MoveItem moves the item at manual position from to position to.
func MoveItem(items []domain.Item, from, to int) ([]domain.Item, error) {
	out := sortedItems(items)
	if err := move(out, from, to); err != nil {
		return nil, err
	}
	renumberItems(out)
	return out, nil
}

// SetItemValue stores raw as the item's value for a criterion. A nil raw
// value clears the entry so the item counts as missing for that criterion.
func SetItemValue(
	items []domain.Item,
	criteria []domain.Criterion,
	itemID, criterionID string,
	raw any,
) ([]domain.Item, error) {
	known := false
	for _, c := range criteria {
		if c.ID == criterionID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: criterion %q", domain.ErrNotFound, criterionID)
	}

	out := domain.CloneItems(items)
	for i := range out {
		if out[i].ID != itemID {
			continue
		}
		if raw == nil {
			delete(out[i].Values, criterionID)
			return out, nil
		}
		if out[i].Values == nil {
			out[i].Values = make(map[string]domain.CriterionValue)
		}
		out[i].Values[criterionID] = domain.CriterionValue{CriterionID: criterionID, Value: raw}
		return out, nil
	}
	return nil, fmt.Errorf("%w: item %q", domain.ErrNotFound, itemID)
}

// sortedCriteria returns a deep copy of criteria sorted by Order.
func sortedCriteria(criteria []domain.Criterion) []domain.Criterion {
	out := domain.CloneCriteria(criteria)
	if out == nil {
		out = []domain.Criterion{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// sortedItems returns a copy of items sorted by manual order.
func sortedItems(items []domain.Item) []domain.Item {
	out := domain.CloneItems(items)
	if out == nil {
		out = []domain.Item{}
	}
	sort.SliceStable(out, func(i, j int) bool { return manualLess(out[i], out[j]) })
	return out
}

func renumberCriteria(criteria []domain.Criterion) {
	for i := range criteria {
		criteria[i].Order = i
	}
}

func renumberItems(items []domain.Item) {
	for i := range items {
		items[i].Order = i
	}
}

// move relocates xs[from] to index to, shifting the elements in between.
func move[T any](xs []T, from, to int) error {
	if from < 0 || from >= len(xs) || to < 0 || to >= len(xs) {
		return fmt.Errorf("%w: move %d -> %d with %d entries", ErrIndexOutOfRange, from, to, len(xs))
	}
	v := xs[from]
	if from < to {
		copy(xs[from:to], xs[from+1:to+1])
	} else {
		copy(xs[to+1:from+1], xs[to:from])
	}
	xs[to] = v
	return nil
}
