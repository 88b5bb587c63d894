// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/relaxedmem"
)

// TestEngineConcurrentStoreLoadRMW drives a single shared Engine from many
// real goroutines at once: Store, Load, and FetchOp calls race against
// each other through the engine's own sync.Mutex. The engine must not
// panic or corrupt its log, and every reader must keep seeing program-order
// visibility (§ property 1): having read a value, a later read by the same
// thread index never goes back to an older one.
func TestEngineConcurrentStoreLoadRMW(t *testing.T) {
	numWriters := 8
	numReaders := 8
	itemsPerWriter := 2000
	if relaxedmem.RaceEnabled {
		numWriters = 4
		numReaders = 4
		itemsPerWriter = 200
	}

	e := relaxedmem.New(7).Build()
	a := e.Allocate(1)

	var wg sync.WaitGroup

	for w := 0; w < numWriters; w++ {
		wg.Add(1)
		tid := e.AddThread()
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < itemsPerWriter; i++ {
				e.FetchOp(tid, a, func(v uint64) uint64 { return v + 1 }, relaxedmem.AcqRel)
			}
		}(tid)
	}

	for r := 0; r < numReaders; r++ {
		wg.Add(1)
		tid := e.AddThread()
		go func(tid int) {
			defer wg.Done()
			var last uint64
			for i := 0; i < itemsPerWriter; i++ {
				got := e.Load(tid, a, relaxedmem.Acquire)
				if got < last {
					t.Errorf("thread %d: program-order visibility violated: read %d after %d", tid, got, last)
					return
				}
				last = got
			}
		}(tid)
	}

	wg.Wait()

	// A Load by a fresh thread has no happens-before edge to the writers
	// and may return any record; an identity RMW always reads the latest.
	final := e.FetchOp(e.AddThread(), a, func(v uint64) uint64 { return v }, relaxedmem.Relaxed)
	want := uint64(numWriters * itemsPerWriter)
	if final != want {
		t.Fatalf("final value: got %d, want %d (every FetchOp must have applied exactly once)", final, want)
	}
}
