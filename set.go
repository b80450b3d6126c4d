package objectmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// ObservationSet is the set of observation identifiers that contributed to
// a record, e.g. the frames an object was seen in. It wraps a 32-bit
// Roaring Bitmap: duplicates collapse and order carries no meaning.
type ObservationSet struct {
	rb *roaring.Bitmap
}

// NewObservationSet creates a set holding the given identifiers.
func NewObservationSet(ids ...uint32) *ObservationSet {
	s := &ObservationSet{rb: roaring.New()}
	s.rb.AddMany(ids)
	return s
}

// Add inserts an identifier into the set.
func (s *ObservationSet) Add(id uint32) {
	s.rb.Add(id)
}

// Contains checks whether an identifier is in the set.
func (s *ObservationSet) Contains(id uint32) bool {
	return s.rb.Contains(id)
}

// Len returns the number of distinct identifiers.
func (s *ObservationSet) Len() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty returns true if the set holds no identifiers.
func (s *ObservationSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Values returns the identifiers in ascending order.
func (s *ObservationSet) Values() []uint32 {
	return s.rb.ToArray()
}

// All returns an iterator over the identifiers in ascending order.
func (s *ObservationSet) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Union merges the identifiers of other into s.
func (s *ObservationSet) Union(other *ObservationSet) {
	if other == nil {
		return
	}
	s.rb.Or(other.rb)
}

// Equal reports whether both sets hold the same identifiers.
func (s *ObservationSet) Equal(other *ObservationSet) bool {
	if other == nil {
		return false
	}
	return s.rb.Equals(other.rb)
}

// Clone returns a deep copy of the set.
func (s *ObservationSet) Clone() *ObservationSet {
	return &ObservationSet{rb: s.rb.Clone()}
}
