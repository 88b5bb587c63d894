// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem

// SequenceStamp maps an address to the ticket of the most recent write to
// it that a thread is known to have observed or produced. It acts as a
// vector clock for visibility: a missing address reads as zero, which
// doubles as the join-semilattice identity element under Synchronize.
//
// The zero value is ready to use.
type SequenceStamp struct {
	seq map[int]uint64
}

// Get returns the recorded ticket for addr, or 0 if none is recorded.
func (s SequenceStamp) Get(addr int) uint64 {
	return s.seq[addr]
}

// Set records ticket as the visibility watermark for addr.
func (s *SequenceStamp) Set(addr int, ticket uint64) {
	if s.seq == nil {
		s.seq = make(map[int]uint64, 1)
	}
	s.seq[addr] = ticket
}

// Synchronize merges other into s by taking, for every address other
// carries, the pointwise maximum of the two stamps' tickets. Synchronize
// is commutative, associative, and idempotent, so repeated or
// out-of-order merges of the same knowledge never lose information and
// never double-count it.
func (s *SequenceStamp) Synchronize(other SequenceStamp) {
	for addr, ticket := range other.seq {
		if ticket > s.Get(addr) {
			s.Set(addr, ticket)
		}
	}
}

// Clone returns an independent copy of s.
func (s SequenceStamp) Clone() SequenceStamp {
	if len(s.seq) == 0 {
		return SequenceStamp{}
	}
	cp := make(map[int]uint64, len(s.seq))
	for addr, ticket := range s.seq {
		cp[addr] = ticket
	}
	return SequenceStamp{seq: cp}
}

// Equal reports whether s and other carry the same (address, ticket)
// pairs, treating a missing key and a key mapped to 0 as equivalent.
func (s SequenceStamp) Equal(other SequenceStamp) bool {
	for addr, ticket := range s.seq {
		if ticket != 0 && other.Get(addr) != ticket {
			return false
		}
	}
	for addr, ticket := range other.seq {
		if ticket != 0 && s.Get(addr) != ticket {
			return false
		}
	}
	return true
}
