package scoring

import (
	"sort"

	"github.com/ahrav/go-compare/internal/domain"
)

// Rank orders items for display and assigns competition ranks.
//
// Items are sorted by Score descending. Scores within TieEpsilon of a
// group's leading score form a tie group: every member gets the same rank,
// which is one more than the number of items ahead of the group (1, 2, 2, 4).
// Inside a group, display order is ascending Order, then ascending ID.
//
// Under ScoringNone every score is 0, so all items form one tie group: they
// share rank 1 and are displayed in manual order (Order, then ID). Stale
// scores on the input are ignored.
//
// Rank returns a new slice; the input is not reordered. The Values maps are
// shared with the input items.
func Rank(items []domain.Item, method domain.ScoringMethod) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)

	if method == domain.ScoringNone {
		sort.SliceStable(out, func(i, j int) bool { return manualLess(out[i], out[j]) })
		for i := range out {
			out[i].Rank = 1
		}
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return manualLess(out[i], out[j])
	})

	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && tied(out[start].Score, out[end].Score) {
			end++
		}

		group := out[start:end]
		sort.SliceStable(group, func(i, j int) bool { return manualLess(group[i], group[j]) })
		for i := range group {
			group[i].Rank = start + 1
		}
		start = end
	}
	return out
}

// manualLess orders by the editor-assigned Order, falling back to ID so the
// result never depends on input order.
func manualLess(a, b domain.Item) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.ID < b.ID
}

// ResolveWinner returns the winner for a ranked slice. With highlightWinner
// the first ranked item wins (empty when there are no items); otherwise the
// caller's current winner is kept untouched.
func ResolveWinner(ranked []domain.Item, highlightWinner bool, current string) string {
	if !highlightWinner {
		return current
	}
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0].ID
}
