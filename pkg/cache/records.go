package cache

import (
	"math/rand/v2"
	"slices"
)

// Records is a record set kept in the order received
type Records[T any] struct {
	values []T
}

// NewRecords takes ownership of values
func NewRecords[T any](values []T) Records[T] {
	return Records[T]{values: values}
}

func (r Records[T]) Values() []T { return r.values }
func (r Records[T]) Len() int    { return len(r.values) }

// MultipleSortedRecords is a record set of an unordered type, sorted by
// value with duplicates removed
type MultipleSortedRecords[T any] struct {
	values []T
}

func NewMultipleSortedRecords[T any](values []T, compare func(a, b T) int) MultipleSortedRecords[T] {
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, compare)
	sorted = slices.CompactFunc(sorted, func(a, b T) bool { return compare(a, b) == 0 })
	return MultipleSortedRecords[T]{values: sorted}
}

func (r MultipleSortedRecords[T]) Values() []T { return r.values }
func (r MultipleSortedRecords[T]) Len() int    { return len(r.values) }

// PriorityGroup holds the records sharing one priority
type PriorityGroup[T any] struct {
	Priority uint16
	Values   []T
}

// group splits values, already sorted by priority, into priority groups
func group[T any](sorted []T, priority func(T) uint16) []PriorityGroup[T] {
	var groups []PriorityGroup[T]
	for start := 0; start < len(sorted); {
		p := priority(sorted[start])
		end := start + 1
		for end < len(sorted) && priority(sorted[end]) == p {
			end++
		}
		groups = append(groups, PriorityGroup[T]{Priority: p, Values: sorted[start:end:end]})
		start = end
	}
	return groups
}

func sortByPriority[T any](values []T, priority func(T) uint16, compare func(a, b T) int) []T {
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b T) int {
		if pa, pb := priority(a), priority(b); pa != pb {
			if pa < pb {
				return -1
			}
			return 1
		}
		return compare(a, b)
	})
	return slices.CompactFunc(sorted, func(a, b T) bool { return compare(a, b) == 0 && priority(a) == priority(b) })
}

// MultiplePrioritizedThenSortedRecords orders records by ascending priority
// (MX preference, NAPTR order) and then by value
type MultiplePrioritizedThenSortedRecords[T any] struct {
	groups []PriorityGroup[T]
}

func NewMultiplePrioritizedThenSortedRecords[T any](values []T, priority func(T) uint16, compare func(a, b T) int) MultiplePrioritizedThenSortedRecords[T] {
	return MultiplePrioritizedThenSortedRecords[T]{groups: group(sortByPriority(values, priority, compare), priority)}
}

func (r MultiplePrioritizedThenSortedRecords[T]) Groups() []PriorityGroup[T] { return r.groups }

// Values flattens the groups in priority order
func (r MultiplePrioritizedThenSortedRecords[T]) Values() []T {
	return flatten(r.groups)
}

func (r MultiplePrioritizedThenSortedRecords[T]) Len() int { return count(r.groups) }

// MultiplePrioritizedThenWeightedRecords keeps SRV and URI style records in
// priority groups so a weighted order can be drawn per group (RFC 2782)
type MultiplePrioritizedThenWeightedRecords[T any] struct {
	groups []PriorityGroup[T]
	weight func(T) uint16
}

func NewMultiplePrioritizedThenWeightedRecords[T any](values []T, priority, weight func(T) uint16, compare func(a, b T) int) MultiplePrioritizedThenWeightedRecords[T] {
	return MultiplePrioritizedThenWeightedRecords[T]{
		groups: group(sortByPriority(values, priority, compare), priority),
		weight: weight,
	}
}

func (r MultiplePrioritizedThenWeightedRecords[T]) Groups() []PriorityGroup[T] { return r.groups }

// Values flattens the groups in priority then value order
func (r MultiplePrioritizedThenWeightedRecords[T]) Values() []T {
	return flatten(r.groups)
}

func (r MultiplePrioritizedThenWeightedRecords[T]) Len() int { return count(r.groups) }

// Select orders the records for contact using the RFC 2782 weighted
// selection within each priority group. The same seed yields the same order.
func (r MultiplePrioritizedThenWeightedRecords[T]) Select(seed uint64) []T {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]T, 0, r.Len())
	for _, g := range r.groups {
		// Zero-weight records go first so they are only picked when drawn as 0.
		remaining := slices.Clone(g.Values)
		slices.SortStableFunc(remaining, func(a, b T) int {
			return boolToInt(r.weight(a) != 0) - boolToInt(r.weight(b) != 0)
		})
		for len(remaining) > 0 {
			sum := 0
			for _, v := range remaining {
				sum += int(r.weight(v))
			}
			pick, running, chosen := rng.IntN(sum+1), 0, len(remaining)-1
			for i, v := range remaining {
				running += int(r.weight(v))
				if running >= pick {
					chosen = i
					break
				}
			}
			out = append(out, remaining[chosen])
			remaining = slices.Delete(remaining, chosen, chosen+1)
		}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func flatten[T any](groups []PriorityGroup[T]) []T {
	out := make([]T, 0, count(groups))
	for _, g := range groups {
		out = append(out, g.Values...)
	}
	return out
}

func count[T any](groups []PriorityGroup[T]) int {
	n := 0
	for _, g := range groups {
		n += len(g.Values)
	}
	return n
}
