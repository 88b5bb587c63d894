// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem

// ThreadView is one thread's private synchronization state. It is never
// shared: the engine mediates every update to it on the thread's behalf
// as that thread's operations are issued.
type ThreadView struct {
	// Seq is the thread's local operation counter, incremented on every
	// store and successful read-modify-write issued by this thread.
	Seq uint64
	// MinSeqCstSeq is the engine ticket of the most recent SeqCst fence
	// this thread executed, or 0 if it has executed none. A non-SeqCst
	// load on this thread may not observe a record older than the latest
	// SeqCst store to that address whose ticket is below this one.
	MinSeqCstSeq uint64
	// MemSequence is what this thread currently knows: the happens-
	// before stamp consulted and extended by every operation it issues.
	MemSequence SequenceStamp
	// FenceSequence tracks what earlier release fences on this thread have
	// made publishable by any later store (Fence channel) versus what
	// earlier Release/SeqCst stores accumulated, which only a later
	// non-Relaxed store publishes (Atomic channel).
	FenceSequence FenceStamp
	// ReadFenceSequence accumulates source fence stamps from every value
	// this thread has read, pending consumption by a future acquire
	// fence on this thread.
	ReadFenceSequence FenceStamp
}
