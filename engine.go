// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem

import (
	"math/rand/v2"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// spuriousWeakDenominator controls how often CompareExchangeWeak
// short-circuits to a spurious failure: roughly 1 in N attempts whose
// comparison would otherwise have succeeded. The C++ standard leaves the
// frequency unspecified; 8 was picked because it is frequent enough for
// a handful of retries to reliably exercise FetchUpdate's retry loop in
// a test, without making every weak CAS in a scenario replay flaky.
const spuriousWeakDenominator = 8

// Engine is the memory subsystem: an append-only per-address operation
// log and a set of per-thread synchronization views, together deciding
// what a load may legally return and how a store/fence/read-modify-write
// mutates happens-before state.
//
// Engine may be called from multiple goroutines: every exported method
// holds mu for its whole duration, so exactly one operation is in flight
// at a time, mirroring how a cooperative single-stepping scheduler would
// drive it. This matches the
// engine's own model of the world: it is itself simulating a sequence of
// single-threaded steps, so there is no benefit — only risk — in letting
// two goroutines race to append to the log.
type Engine struct {
	mu sync.Mutex

	ticket atomix.Uint64

	// seqCstSequence is the single sequence stamp every SeqCst fence
	// merges into and out of. SeqCst stores do not touch it; a SeqCst load
	// finds the latest SeqCst store by scanning the log instead.
	seqCstSequence SequenceStamp

	// initial holds one genesis record per allocated address, indexed by
	// address. log holds every store and successful RMW in append order,
	// which is also global_seq order.
	initial []Record
	log     []Record

	threads []ThreadView

	rng *rand.Rand
}

// Allocate reserves n contiguous fresh addresses, each initialized to
// value 0 via a Relaxed genesis record with global_seq 0 and empty
// stamps, and returns the base address.
func (e *Engine) Allocate(n int) (base int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n < 0 {
		invariant("Allocate", "count must be >= 0, got %d", n)
	}
	base = len(e.initial)
	for i := 0; i < n; i++ {
		e.initial = append(e.initial, Record{Address: base + i})
	}
	return base
}

// AddThread appends a fresh thread view and returns its index.
func (e *Engine) AddThread() (tid int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tid = len(e.threads)
	e.threads = append(e.threads, ThreadView{})
	return tid
}

// nextTicket hands out a strictly increasing global_seq. Callers hold
// mu, so plain increment-and-read would be just as correct; atomix.Uint64
// is used anyway so the ticket counter carries the same explicit-ordering
// discipline as the rest of this package's stamps, rather than reading
// as an unguarded plain field next to them.
func (e *Engine) nextTicket() uint64 {
	return e.ticket.AddAcqRel(1)
}

func (e *Engine) checkThread(tid int) *ThreadView {
	if tid < 0 || tid >= len(e.threads) {
		invariant("thread", "thread index %d out of range [0,%d)", tid, len(e.threads))
	}
	return &e.threads[tid]
}

func (e *Engine) checkAddress(addr int) {
	if addr < 0 || addr >= len(e.initial) {
		invariant("address", "address %d out of range [0,%d)", addr, len(e.initial))
	}
}

// recordsAt returns, oldest first, every record for addr: the genesis
// record followed by every log entry at addr in append order. Because
// every write anywhere strictly increases global_seq, this sequence is
// already sorted by global_seq.
func (e *Engine) recordsAt(addr int) []*Record {
	out := make([]*Record, 0, 4)
	out = append(out, &e.initial[addr])
	for i := range e.log {
		if e.log[i].Address == addr {
			out = append(out, &e.log[i])
		}
	}
	return out
}

// latestAt returns the log-order-last record for addr, or the genesis
// record if addr has never been written. The log is append-order, and
// every write strictly increases global_seq regardless of address, so the
// first match a backward scan reaches is the one with greatest
// global_seq — no secondary index is needed at this scale.
func (e *Engine) latestAt(addr int) *Record {
	for i := len(e.log) - 1; i >= 0; i-- {
		if e.log[i].Address == addr {
			return &e.log[i]
		}
	}
	return &e.initial[addr]
}

// latestSeqCstStoreAt returns the greatest global_seq among addr's
// records at SeqCst level, or 0 if none.
func (e *Engine) latestSeqCstStoreAt(addr int) uint64 {
	for i := len(e.log) - 1; i >= 0; i-- {
		if e.log[i].Address == addr && e.log[i].Level == SeqCst {
			return e.log[i].GlobalSeq
		}
	}
	return 0
}

// latestSeqCstStoreBefore returns the greatest global_seq among addr's
// SeqCst records with global_seq < before, or 0 if none.
func (e *Engine) latestSeqCstStoreBefore(addr int, before uint64) uint64 {
	for i := len(e.log) - 1; i >= 0; i-- {
		r := &e.log[i]
		if r.Address == addr && r.Level == SeqCst && r.GlobalSeq < before {
			return r.GlobalSeq
		}
	}
	return 0
}

// writeBookkeeping performs the §4.2 accounting for a write at level l
// to addr by thread t: it assigns a ticket, advances the thread's local
// counter and mem_sequence, and — for Release/SeqCst — folds mem_sequence
// into the fence_sequence atomic channel. It returns the ticket and the
// thread's resulting (unmasked) mem_sequence and fence_sequence for the
// caller to turn into a record's published stamps.
func (e *Engine) writeBookkeeping(t *ThreadView, addr int, l Level) (ticket uint64, mem SequenceStamp, fence FenceStamp) {
	t.Seq++
	ticket = e.nextTicket()
	t.MemSequence.Set(addr, ticket)

	if l == Release || l == SeqCst {
		t.FenceSequence.Atomic.Synchronize(t.MemSequence)
	}

	return ticket, t.MemSequence.Clone(), t.FenceSequence.Clone()
}

// readBookkeeping performs the §4.3 accounting for thread t choosing to
// read record r at level l.
func (e *Engine) readBookkeeping(t *ThreadView, r *Record, l Level) {
	if (r.Level == Release || r.Level == SeqCst || r.ReleaseChain) && (l == Acquire || l == SeqCst) {
		t.MemSequence.Synchronize(r.SourceSequence)
	}
	if l == Acquire || l == SeqCst {
		t.MemSequence.Synchronize(r.SourceFenceSequence.Fence)
	}
	t.ReadFenceSequence.Synchronize(r.SourceFenceSequence)
	if r.GlobalSeq > t.MemSequence.Get(r.Address) {
		t.MemSequence.Set(r.Address, r.GlobalSeq)
	}
}

// Store appends a store record at level l to addr.
func (e *Engine) Store(tid, addr int, value uint64, l Level) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !l.validStore() {
		invariant("Store", "invalid store ordering %s", l)
	}
	e.checkAddress(addr)
	t := e.checkThread(tid)

	ticket, mem, fence := e.writeBookkeeping(t, addr, l)
	srcFence := fence
	if l == Relaxed {
		srcFence = fence.MaskAtomic()
	}
	e.log = append(e.log, Record{
		Thread:              tid,
		ThreadSeq:           t.Seq,
		GlobalSeq:           ticket,
		Address:             addr,
		Value:               value,
		Level:               l,
		SourceSequence:      mem,
		SourceFenceSequence: srcFence,
	})
}

// Load returns a legally visible value from addr at level l.
func (e *Engine) Load(tid, addr int, l Level) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !l.validLoad() {
		invariant("Load", "invalid load ordering %s", l)
	}
	e.checkAddress(addr)
	t := e.checkThread(tid)

	c := t.MemSequence.Get(addr)

	var m uint64
	if l == SeqCst {
		latestSeqCst := e.latestSeqCstStoreAt(addr)
		floor := e.seqCstSequence.Get(addr)
		m = max(latestSeqCst, floor)
	} else if t.MinSeqCstSeq > 0 {
		m = e.latestSeqCstStoreBefore(addr, t.MinSeqCstSeq)
	}

	threshold := max(c, m)
	candidates := make([]*Record, 0, 4)
	for _, r := range e.recordsAt(addr) {
		if r.GlobalSeq >= threshold {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		invariant("Load", "empty candidate set for address %d (threshold %d)", addr, threshold)
	}

	chosen := candidates[e.rng.IntN(len(candidates))]
	e.readBookkeeping(t, chosen, l)
	return chosen.Value
}

// Fence updates thread tid's synchronization state at level l.
func (e *Engine) Fence(tid int, l Level) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !l.validFence() {
		invariant("Fence", "invalid fence ordering %s", l)
	}
	t := e.checkThread(tid)

	ticket := e.nextTicket()

	if l == SeqCst {
		t.MemSequence.Synchronize(e.seqCstSequence)
		e.seqCstSequence.Synchronize(t.MemSequence)
		t.MinSeqCstSeq = ticket
	}
	if l == Release || l == AcqRel || l == SeqCst {
		t.FenceSequence.Fence.Synchronize(t.MemSequence)
	}
	if l == Acquire || l == AcqRel || l == SeqCst {
		t.MemSequence.Synchronize(t.ReadFenceSequence.Atomic)
		t.MemSequence.Synchronize(t.ReadFenceSequence.Fence)
	}
}

// rmwOutcome is the internal three-way result of one RMW attempt.
type rmwOutcome struct {
	value    uint64
	ok       bool
	spurious bool
}

// rmw is the §4.7 RMW core shared by FetchOp, CompareExchange,
// CompareExchangeWeak, and FetchUpdate. f maps the current value to a
// new value and true, or to (anything, false) to decline. weak allows a
// would-succeed attempt to short-circuit into a spurious failure.
func (e *Engine) rmw(tid, addr int, f func(uint64) (uint64, bool), success, failure Level, weak bool) rmwOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !success.validRMWSuccess() {
		invariant("RMW", "invalid success ordering %s", success)
	}
	if !failure.validRMWFailure() {
		invariant("RMW", "invalid failure ordering %s", failure)
	}
	e.checkAddress(addr)
	t := e.checkThread(tid)

	chosen := e.latestAt(addr)
	preimage := chosen.Value

	result, proceed := f(preimage)
	if !proceed {
		e.readBookkeeping(t, chosen, failure)
		return rmwOutcome{value: preimage, ok: false}
	}

	if weak && e.rng.IntN(spuriousWeakDenominator) == 0 {
		e.readBookkeeping(t, chosen, failure)
		return rmwOutcome{value: preimage, ok: false, spurious: true}
	}

	loadLevel, storeLevel := success.split()

	e.readBookkeeping(t, chosen, loadLevel)
	ticket, mem, fence := e.writeBookkeeping(t, addr, storeLevel)

	var src SequenceStamp
	var srcFence FenceStamp
	switch {
	case chosen.Level == Relaxed:
		// No chain inherited: publish only what T itself now knows.
		src, srcFence = mem, fence
	case success == Release || success == AcqRel || success == SeqCst:
		// Republish and extend the chain.
		src, srcFence = mem, fence
		src.Synchronize(chosen.SourceSequence)
		srcFence.Synchronize(chosen.SourceFenceSequence)
	default:
		// success ∈ {Relaxed, Acquire}: forward without contributing.
		src = chosen.SourceSequence.Clone()
		srcFence = chosen.SourceFenceSequence.Clone()
	}

	if storeLevel == Relaxed {
		srcFence = srcFence.MaskAtomic()
	}

	rec := Record{
		Thread:              tid,
		ThreadSeq:           t.Seq,
		GlobalSeq:           ticket,
		Address:             addr,
		Value:               result,
		Level:               storeLevel,
		ReleaseChain:        chosen.Level != Relaxed,
		SourceSequence:      src,
		SourceFenceSequence: srcFence,
	}
	e.log = append(e.log, rec)

	return rmwOutcome{value: preimage, ok: true}
}

// FetchOp applies f to addr's current value and stores the result,
// unconditionally. It never fails and returns the pre-image.
func (e *Engine) FetchOp(tid, addr int, f func(uint64) uint64, l Level) uint64 {
	out := e.rmw(tid, addr, func(v uint64) (uint64, bool) { return f(v), true }, l, l.rmwFailureLevel(), false)
	return out.value
}

// CompareExchange atomically replaces addr's value with newValue if it
// currently equals current. ok reports success; the returned value is
// always the pre-image actually observed.
func (e *Engine) CompareExchange(tid, addr int, current, newValue uint64, success, failure Level) (value uint64, ok bool) {
	out := e.rmw(tid, addr, func(v uint64) (uint64, bool) {
		if v == current {
			return newValue, true
		}
		return v, false
	}, success, failure, false)
	return out.value, out.ok
}

// CompareExchangeWeak is CompareExchange but may, with fixed
// probability, spuriously fail even when current matches.
func (e *Engine) CompareExchangeWeak(tid, addr int, current, newValue uint64, success, failure Level) (value uint64, ok bool) {
	out := e.rmw(tid, addr, func(v uint64) (uint64, bool) {
		if v == current {
			return newValue, true
		}
		return v, false
	}, success, failure, true)
	return out.value, out.ok
}

// FetchUpdate loops a weak read-modify-write, reapplying f to whatever
// value is actually current on each attempt, until f declines (failure,
// carrying the value f declined on) or an attempt commits (success,
// carrying the pre-image it replaced). Because rmw always operates on
// the true latest record, there is no ABA-style lost-race case distinct
// from a fresh application of f: the only two loop-relevant outcomes are
// a genuine decline by f and a spurious weak short-circuit, which is
// retried transparently.
func (e *Engine) FetchUpdate(tid, addr int, f func(uint64) (uint64, bool), success, failure Level) (value uint64, ok bool) {
	sw := spin.Wait{}
	for {
		out := e.rmw(tid, addr, f, success, failure, true)
		if out.ok {
			return out.value, true
		}
		if !out.spurious {
			return out.value, false
		}
		sw.Once()
	}
}

// rmwFailureLevel maps a success ordering to the §3-legal failure
// ordering FetchOp uses internally: FetchOp never fails, so any legal
// choice is equivalent, but downgrading Release to Relaxed and AcqRel to
// Acquire (Relaxed, Acquire and SeqCst are already legal failure levels
// and pass through unchanged) keeps the failure-path bookkeeping inside
// rmw() well-defined for every success level.
func (l Level) rmwFailureLevel() Level {
	switch l {
	case Release:
		return Relaxed
	case AcqRel:
		return Acquire
	default:
		return l
	}
}
