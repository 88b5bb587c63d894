// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem

// Record is an immutable entry in the engine's append-only log,
// describing one completed store or successful read-modify-write.
// Records are never mutated or removed once appended; the log order of
// records sharing an address is that address's modification order.
type Record struct {
	// Thread is the producing thread's index.
	Thread int
	// ThreadSeq is the producing thread's local operation counter at the
	// time this record was created.
	ThreadSeq uint64
	// GlobalSeq is the engine-wide ticket assigned to this record. It is
	// strictly increasing across every store, successful RMW, and fence.
	GlobalSeq uint64
	// Address is the target address.
	Address int
	// Value is the value stored. A successful read-modify-write records
	// its post-image here, not the value it read.
	Value uint64
	// Level is the store-side ordering of the operation that produced
	// this record. An AcqRel read-modify-write records Release here.
	Level Level
	// ReleaseChain is true iff this record came from a read-modify-write
	// whose predecessor record was not Relaxed, regardless of this
	// record's own Level. It lets a later Acquire reader synchronize
	// with the original Release writer through a chain of RMWs that may
	// themselves be Relaxed.
	ReleaseChain bool
	// SourceSequence is the visibility stamp this record publishes to an
	// Acquire (or release-chain-continuing) reader.
	SourceSequence SequenceStamp
	// SourceFenceSequence is the fence stamp this record publishes.
	SourceFenceSequence FenceStamp
}
