// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem_test

import (
	"testing"

	"code.hybscloud.com/relaxedmem"
)

func TestFetchOpReturnsPreimageAndApplies(t *testing.T) {
	e := relaxedmem.New(1).Build()
	a := e.Allocate(1)
	tid := e.AddThread()
	e.Store(tid, a, 10, relaxedmem.Relaxed)

	pre := e.FetchOp(tid, a, func(v uint64) uint64 { return v + 5 }, relaxedmem.AcqRel)
	if pre != 10 {
		t.Fatalf("FetchOp preimage: got %d, want 10", pre)
	}
	if got := e.Load(tid, a, relaxedmem.Relaxed); got != 15 {
		t.Fatalf("Load after FetchOp: got %d, want 15", got)
	}
}

func TestCompareExchangeSuccess(t *testing.T) {
	e := relaxedmem.New(1).Build()
	a := e.Allocate(1)
	tid := e.AddThread()
	e.Store(tid, a, 1, relaxedmem.Relaxed)

	v, ok := e.CompareExchange(tid, a, 1, 2, relaxedmem.SeqCst, relaxedmem.Acquire)
	if !ok {
		t.Fatalf("CompareExchange: expected success")
	}
	if v != 1 {
		t.Fatalf("CompareExchange preimage: got %d, want 1", v)
	}
	if got := e.Load(tid, a, relaxedmem.Relaxed); got != 2 {
		t.Fatalf("Load after successful CompareExchange: got %d, want 2", got)
	}
}

func TestCompareExchangeFailureDoesNotMutate(t *testing.T) {
	e := relaxedmem.New(1).Build()
	a := e.Allocate(1)
	tid := e.AddThread()
	e.Store(tid, a, 1, relaxedmem.Relaxed)

	v, ok := e.CompareExchange(tid, a, 99, 2, relaxedmem.SeqCst, relaxedmem.Acquire)
	if ok {
		t.Fatalf("CompareExchange: expected failure")
	}
	if v != 1 {
		t.Fatalf("CompareExchange observed value: got %d, want 1", v)
	}
	if got := e.Load(tid, a, relaxedmem.Relaxed); got != 1 {
		t.Fatalf("address mutated on a failed CompareExchange: got %d, want 1", got)
	}
}

func TestCompareExchangeWeakEventuallySucceeds(t *testing.T) {
	e := relaxedmem.New(1).Build()
	a := e.Allocate(1)
	tid := e.AddThread()
	e.Store(tid, a, 1, relaxedmem.Relaxed)

	const attempts = 200
	succeeded := false
	for i := 0; i < attempts; i++ {
		if _, ok := e.CompareExchangeWeak(tid, a, 1, 2, relaxedmem.Relaxed, relaxedmem.Relaxed); ok {
			succeeded = true
			break
		}
	}
	if !succeeded {
		t.Fatalf("CompareExchangeWeak never succeeded in %d attempts despite a matching comparand", attempts)
	}
}

func TestFetchUpdateDeclines(t *testing.T) {
	e := relaxedmem.New(1).Build()
	a := e.Allocate(1)
	tid := e.AddThread()

	v, ok := e.FetchUpdate(tid, a, func(v uint64) (uint64, bool) {
		return 0, false
	}, relaxedmem.AcqRel, relaxedmem.Acquire)
	if ok {
		t.Fatalf("FetchUpdate: expected decline to report failure")
	}
	if v != 0 {
		t.Fatalf("FetchUpdate declined value: got %d, want 0", v)
	}
}

func TestFetchUpdateAppliesFUntilSuccess(t *testing.T) {
	e := relaxedmem.New(1).Build()
	a := e.Allocate(1)
	tid := e.AddThread()
	e.Store(tid, a, 10, relaxedmem.Relaxed)

	pre, ok := e.FetchUpdate(tid, a, func(v uint64) (uint64, bool) {
		return v * 2, true
	}, relaxedmem.AcqRel, relaxedmem.Acquire)
	if !ok {
		t.Fatalf("FetchUpdate: expected success")
	}
	if pre != 10 {
		t.Fatalf("FetchUpdate preimage: got %d, want 10", pre)
	}
	if got := e.Load(tid, a, relaxedmem.Relaxed); got != 20 {
		t.Fatalf("Load after FetchUpdate: got %d, want 20", got)
	}
}

func TestRMWAlwaysReadsTrueLatestAcrossThreads(t *testing.T) {
	e := relaxedmem.New(1).Build()
	a := e.Allocate(1)
	w := e.AddThread()
	r := e.AddThread()

	e.Store(w, a, 1, relaxedmem.Relaxed)
	e.Store(w, a, 2, relaxedmem.Relaxed)
	e.Store(w, a, 3, relaxedmem.Relaxed)

	pre := e.FetchOp(r, a, func(v uint64) uint64 { return v }, relaxedmem.Relaxed)
	if pre != 3 {
		t.Fatalf("RMW preimage across threads: got %d, want 3 (the true latest store)", pre)
	}
}
