// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package relaxedmem simulates the C++/C11 relaxed memory model so that
// concurrent algorithms written against atomic primitives can be
// exercised against the weakest behaviors the standard permits —
// behaviors most real hardware hides.
//
// The engine is a pure state machine: a driver of your choosing
// schedules pseudo-threads and issues load/store/fence/read-modify-write
// calls one at a time, and the engine decides, for each load, which of
// the legally visible values to return, and updates happens-before state
// accordingly.
//
// # Quick Start
//
//	e := relaxedmem.New(42).Build()
//	a := e.Allocate(2)
//	t0 := e.AddThread()
//	t1 := e.AddThread()
//
//	e.Store(t0, a, 1, relaxedmem.SeqCst)
//	v := e.Load(t1, a, relaxedmem.SeqCst)
//
// # Ordering Levels
//
// The five levels are [Relaxed], [Acquire], [Release], [AcqRel], and
// [SeqCst], matching C++'s std::memory_order. Not every level is legal
// for every operation:
//
//	Store:            Relaxed, Release, SeqCst
//	Load:              Relaxed, Acquire, SeqCst
//	Fence:                      Acquire, Release, AcqRel, SeqCst
//	RMW success:       any level
//	RMW failure:       Relaxed, Acquire, SeqCst
//
// Passing an illegal level panics with an [*InvariantError]; this is a
// caller bug, not a runtime condition to recover from.
//
// # Read-Modify-Write
//
// [Engine.FetchOp], [Engine.CompareExchange], [Engine.CompareExchangeWeak],
// and [Engine.FetchUpdate] share one internal primitive that always reads
// the true latest value for the address — there is no "lost the race"
// outcome distinct from a fresh read. CompareExchangeWeak may spuriously
// fail even when the comparison would have succeeded, modeling what the
// standard explicitly permits; FetchUpdate retries transparently around
// that spurious case using [code.hybscloud.com/spin].
//
//	e.FetchOp(t0, a, func(v uint64) uint64 { return v + 1 }, relaxedmem.AcqRel)
//
//	if v, ok := e.CompareExchange(t0, a, 1, 2, relaxedmem.SeqCst, relaxedmem.Acquire); !ok {
//	    // v is the value actually observed at a
//	}
//
//	e.FetchUpdate(t0, a, func(v uint64) (uint64, bool) {
//	    if v == 0 {
//	        return 0, false // decline
//	    }
//	    return v - 1, true
//	}, relaxedmem.AcqRel, relaxedmem.Acquire)
//
// # Determinism
//
// The load operation and weak-CAS spurious failure both consult a
// pseudo-random source. [New] requires a seed; given the same seed and
// the same sequence of calls, an Engine's outcomes are bitwise
// identical, which is what makes property-based replay useful. Never
// derive the seed from wall-clock time in a test.
//
// # Thread Safety
//
// An [Engine] is itself single-threaded cooperative: every exported
// method takes the engine's internal lock for its own duration, so calls
// from multiple goroutines are serialized but never interleaved
// mid-operation. The driver chooses the interleaving by choosing the
// order in which it issues calls from its own goroutines — the engine
// does not schedule anything on its own.
//
// # Error Handling
//
// A failed [Engine.CompareExchange], [Engine.CompareExchangeWeak], or
// [Engine.FetchUpdate] is not an error: it is the ordinary, expected way
// those calls report "the expected value was not current", returned as
// a plain (value, ok) pair. An [*InvariantError] panic, by contrast,
// always indicates a caller or engine bug — an invalid ordering level,
// an unknown thread or address — and is never retried.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for the engine's ticket
// counter and [code.hybscloud.com/spin] for FetchUpdate's retry loop.
package relaxedmem
