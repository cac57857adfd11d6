// Package indexset implements the fixed-capacity index sets used to describe
// which parameters and results of a function participate in differentiation.
package indexset

import (
	"fmt"
	"math/bits"
	"strings"
)

const wordBits = 64

// IndexSet is an immutable set of non-negative positions over the ordinal
// range [0, capacity). Capacity is fixed at construction and independent of
// how many positions are members. All operations are pure; none mutates the
// receiver.
type IndexSet struct {
	capacity int
	words    []uint64
}

// OutOfRangeError indicates an index outside the set's capacity.
type OutOfRangeError struct {
	Index    int
	Capacity int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for capacity %d", e.Index, e.Capacity)
}

// New builds a set over [0, capacity) containing the given indices.
func New(capacity int, indices ...int) (*IndexSet, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("negative capacity %d", capacity)
	}
	s := &IndexSet{
		capacity: capacity,
		words:    make([]uint64, (capacity+wordBits-1)/wordBits),
	}
	for _, i := range indices {
		if i < 0 || i >= capacity {
			return nil, &OutOfRangeError{Index: i, Capacity: capacity}
		}
		s.words[i/wordBits] |= 1 << uint(i%wordBits)
	}
	return s, nil
}

// MustNew is New for statically known indices. It panics on a bad index, so
// it is only for literals in tests and initialization code.
func MustNew(capacity int, indices ...int) *IndexSet {
	s, err := New(capacity, indices...)
	if err != nil {
		panic(fmt.Sprintf("indexset.MustNew: %v", err))
	}
	return s
}

// Capacity returns the total addressable range of the set.
func (s *IndexSet) Capacity() int {
	return s.capacity
}

// Contains reports whether i is a member.
func (s *IndexSet) Contains(i int) bool {
	if i < 0 || i >= s.capacity {
		return false
	}
	return s.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// NumIndices returns the number of members (population count).
func (s *IndexSet) NumIndices() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Indices returns the members in ascending order.
func (s *IndexSet) Indices() []int {
	out := make([]int, 0, s.NumIndices())
	for i := 0; i < s.capacity; i++ {
		if s.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}

// Equal reports whether both sets have the same capacity and the same
// members.
func (s *IndexSet) Equal(other *IndexSet) bool {
	if s.capacity != other.capacity {
		return false
	}
	for i, w := range s.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// IsSupersetOf reports whether every member of other is a member of s.
// Both sets must have the same capacity: a request computed against a
// partially applied view of a function must be extended with
// ExtendingCapacity before comparing, so that capacity mismatches between
// declared arity and call-site arity never pass silently. Calling this with
// mismatched capacities is a caller bug.
func (s *IndexSet) IsSupersetOf(other *IndexSet) bool {
	if s.capacity != other.capacity {
		panic(fmt.Sprintf("indexset: IsSupersetOf capacity mismatch: %d vs %d", s.capacity, other.capacity))
	}
	for i, w := range other.words {
		if w&^s.words[i] != 0 {
			return false
		}
	}
	return true
}

// ExtendingCapacity returns a copy of s over the larger range
// [0, newCapacity). Membership is unchanged; the added positions are empty.
// Shrinking is undefined and panics.
func (s *IndexSet) ExtendingCapacity(newCapacity int) *IndexSet {
	if newCapacity < s.capacity {
		panic(fmt.Sprintf("indexset: cannot shrink capacity %d to %d", s.capacity, newCapacity))
	}
	out := &IndexSet{
		capacity: newCapacity,
		words:    make([]uint64, (newCapacity+wordBits-1)/wordBits),
	}
	copy(out.words, s.words)
	return out
}

// String renders the set as "{0, 2}/3" (members over capacity).
func (s *IndexSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for n, i := range s.Indices() {
		if n > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", i)
	}
	fmt.Fprintf(&b, "}/%d", s.capacity)
	return b.String()
}
