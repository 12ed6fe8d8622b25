package ordering

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MsgSortOrderRequired is reported when any submitted row lacks an order.
const MsgSortOrderRequired = "sort order required"

// BulkEntry is one submitted row of a bulk reorder: a review id and the raw
// requested order, exactly as received.
type BulkEntry struct {
	ID        string `json:"id"`
	SortOrder string `json:"sort_order"`
}

// ValidationError lists every invalid field of a bulk submission.
// Fields is keyed by form field name (form-<i>-sort_order).
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MaxBulkRows caps the rows of one bulk submission.
const MaxBulkRows = 1000

// ParseBulkForm reads rows submitted as form-<i>-id / form-<i>-sort_order.
//
// When form-TOTAL_FORMS is present it fixes the number of rows. Otherwise
// the rows run from 0 to the highest index found in the keys. Either way an
// index with no fields becomes a blank row, which ValidateBulk rejects, so
// a sparse submission never loses rows silently. More than MaxBulkRows rows,
// or a row index at or past TOTAL_FORMS, fails the whole form.
func ParseBulkForm(form url.Values) ([]BulkEntry, error) {
	indexes := make(map[int]struct{})
	highest := -1
	for key := range form {
		idx, ok := rowIndex(key)
		if !ok {
			continue
		}
		if idx >= MaxBulkRows {
			return nil, tooManyRows()
		}
		indexes[idx] = struct{}{}
		highest = max(highest, idx)
	}

	total := highest + 1
	if raw := strings.TrimSpace(form.Get("form-TOTAL_FORMS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &ValidationError{
				Message: "invalid bulk reorder",
				Fields:  map[string]string{"form-TOTAL_FORMS": "must be a non-negative integer"},
			}
		}
		if n > MaxBulkRows {
			return nil, tooManyRows()
		}
		if highest >= n {
			return nil, &ValidationError{
				Message: "invalid bulk reorder",
				Fields:  map[string]string{fmt.Sprintf("form-%d-id", highest): "row is outside form-TOTAL_FORMS"},
			}
		}
		total = n
	}

	entries := make([]BulkEntry, total)
	for idx := range indexes {
		entries[idx] = BulkEntry{
			ID:        strings.TrimSpace(form.Get(fmt.Sprintf("form-%d-id", idx))),
			SortOrder: strings.TrimSpace(form.Get(fmt.Sprintf("form-%d-sort_order", idx))),
		}
	}
	return entries, nil
}

// rowIndex extracts i from form-<i>-id and form-<i>-sort_order keys.
func rowIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "form-")
	if !ok {
		return 0, false
	}
	num, field, ok := strings.Cut(rest, "-")
	if !ok || (field != "id" && field != "sort_order") {
		return 0, false
	}
	if num == "" || strings.TrimLeft(num, "0123456789") != "" || (len(num) > 1 && num[0] == '0') {
		return 0, false
	}
	idx, err := strconv.Atoi(num)
	if err != nil {
		// Out of int range, so certainly past MaxBulkRows.
		return MaxBulkRows, true
	}
	return idx, true
}

func tooManyRows() *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("at most %d reviews can be reordered at once", MaxBulkRows),
		Fields:  map[string]string{"form-TOTAL_FORMS": fmt.Sprintf("must be at most %d", MaxBulkRows)},
	}
}

// ValidateBulk checks a whole submission before anything is written. Every
// row needs a review id and a positive integer order, and no review may
// appear twice. A single bad row rejects the batch.
//
// Validation is deliberately strict: a blank order always fails the batch
// rather than being skipped.
func ValidateBulk(entries []BulkEntry) ([]Assignment, error) {
	if len(entries) > MaxBulkRows {
		return nil, tooManyRows()
	}

	fields := make(map[string]string)
	missingOrder := false
	seen := make(map[string]int, len(entries))
	assignments := make([]Assignment, 0, len(entries))

	for i, e := range entries {
		idKey := fmt.Sprintf("form-%d-id", i)
		orderKey := fmt.Sprintf("form-%d-sort_order", i)

		if e.ID == "" {
			fields[idKey] = "review id required"
		} else if prev, dup := seen[e.ID]; dup {
			fields[idKey] = fmt.Sprintf("duplicate of form-%d-id", prev)
		} else {
			seen[e.ID] = i
		}

		if e.SortOrder == "" {
			fields[orderKey] = MsgSortOrderRequired
			missingOrder = true
			continue
		}
		order, err := strconv.Atoi(e.SortOrder)
		if err != nil || order < 1 {
			fields[orderKey] = "sort order must be a positive integer"
			continue
		}
		assignments = append(assignments, Assignment{ID: e.ID, SortOrder: order})
	}

	if len(fields) == 0 {
		return assignments, nil
	}

	msg := "invalid bulk reorder"
	if missingOrder {
		msg = MsgSortOrderRequired
	}
	return nil, &ValidationError{Message: msg, Fields: fields}
}
