// Package ordering maintains the display order of a song's reviews.
//
// The engine works on plain (id, sort order) pairs and returns the orders
// that must change; it never touches storage. After any move the orders of
// the set are exactly 1..N.
package ordering

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Move is a single-review reorder operation.
type Move string

// Supported moves.
const (
	MoveTop    Move = "top"
	MoveBottom Move = "bottom"
	MoveUp     Move = "up"
	MoveDown   Move = "down"
)

// Moves lists every supported move.
var Moves = []Move{MoveTop, MoveBottom, MoveUp, MoveDown}

var (
	// ErrUnknownMove is returned for a move name outside Moves.
	ErrUnknownMove = errors.New("unknown move")
	// ErrNotInSet is returned when the target is not among the orderable items.
	ErrNotInSet = errors.New("review is not in the orderable set")
)

// ParseMove converts a direction name into a Move.
func ParseMove(s string) (Move, error) {
	m := Move(s)
	if slices.Contains(Moves, m) {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMove, s)
}

// Item is one orderable review.
type Item struct {
	ID        string
	SortOrder int
}

// Assignment is a new sort order for one review.
type Assignment struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}

// Plan applies move to target within items and returns only the assignments
// whose order differs from the current one. Items are ranked by SortOrder;
// equal orders keep their position in items, so callers should pass them in
// insertion order. Moving the first item up or the last item down returns
// no assignments.
func Plan(items []Item, targetID string, move Move) ([]Assignment, error) {
	if !slices.Contains(Moves, move) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMove, move)
	}

	ranked := rank(items)
	idx := slices.IndexFunc(ranked, func(it Item) bool { return it.ID == targetID })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotInSet, targetID)
	}

	target := ranked[idx]
	switch move {
	case MoveTop:
		ranked = slices.Delete(ranked, idx, idx+1)
		ranked = slices.Insert(ranked, 0, target)
	case MoveBottom:
		ranked = slices.Delete(ranked, idx, idx+1)
		ranked = append(ranked, target)
	case MoveUp:
		if idx > 0 {
			ranked[idx-1], ranked[idx] = ranked[idx], ranked[idx-1]
		}
	case MoveDown:
		if idx < len(ranked)-1 {
			ranked[idx], ranked[idx+1] = ranked[idx+1], ranked[idx]
		}
	}

	return renumber(ranked), nil
}

// Normalize returns the assignments that turn items into a gap-free 1..N run
// while keeping their relative order.
func Normalize(items []Item) []Assignment {
	return renumber(rank(items))
}

// Apply returns a copy of items with assignments applied, ranked by the new order.
func Apply(items []Item, assignments []Assignment) []Item {
	updated := make(map[string]int, len(assignments))
	for _, a := range assignments {
		updated[a.ID] = a.SortOrder
	}

	out := make([]Item, len(items))
	for i, it := range items {
		if order, ok := updated[it.ID]; ok {
			it.SortOrder = order
		}
		out[i] = it
	}
	return rank(out)
}

// Contiguous reports whether the orders of items are exactly 1..N.
func Contiguous(items []Item) bool {
	seen := make([]bool, len(items)+1)
	for _, it := range items {
		if it.SortOrder < 1 || it.SortOrder > len(items) || seen[it.SortOrder] {
			return false
		}
		seen[it.SortOrder] = true
	}
	return true
}

// rank returns a copy of items sorted by SortOrder, stable on input position.
func rank(items []Item) []Item {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b Item) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
	return ranked
}

// renumber assigns 1..N in slice order and keeps only real changes.
func renumber(ranked []Item) []Assignment {
	var changed []Assignment
	for i, it := range ranked {
		if order := i + 1; it.SortOrder != order {
			changed = append(changed, Assignment{ID: it.ID, SortOrder: order})
		}
	}
	return changed
}
