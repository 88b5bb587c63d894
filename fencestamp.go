// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem

// FenceStamp separates knowledge that can ride a release store (Atomic)
// from knowledge that only a release fence can republish (Fence).
//
// Without the split, a Relaxed store would silently extend a release
// sequence started by an earlier release fence, or a release fence would
// fail to republish knowledge a plain release store already carries.
// Either collapse reintroduces a real historical class of bug; keep the
// two channels independent through every Synchronize and mask.
//
// The zero value is ready to use.
type FenceStamp struct {
	Atomic SequenceStamp
	Fence  SequenceStamp
}

// Synchronize merges other into f, channel by channel.
func (f *FenceStamp) Synchronize(other FenceStamp) {
	f.Atomic.Synchronize(other.Atomic)
	f.Fence.Synchronize(other.Fence)
}

// MaskAtomic returns a copy of f with the atomic channel cleared,
// leaving the fence channel untouched. A Relaxed store or Relaxed-store
// read-modify-write publishes the masked result: it does not carry
// forward knowledge that only an earlier release store established,
// while knowledge an earlier release fence established still rides it.
func (f FenceStamp) MaskAtomic() FenceStamp {
	return FenceStamp{Fence: f.Fence.Clone()}
}

// Clone returns an independent copy of f.
func (f FenceStamp) Clone() FenceStamp {
	return FenceStamp{Atomic: f.Atomic.Clone(), Fence: f.Fence.Clone()}
}
