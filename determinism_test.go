// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem_test

import (
	"testing"

	"code.hybscloud.com/relaxedmem"
)

// replay runs a fixed call sequence against a freshly built engine seeded
// with seed and returns every observed load/RMW result in call order.
func replay(seed uint64) []uint64 {
	e := relaxedmem.New(seed).Build()
	a := e.Allocate(2)
	t1 := e.AddThread()
	t2 := e.AddThread()

	var observed []uint64

	e.Store(t1, a, 1, relaxedmem.Relaxed)
	observed = append(observed, e.Load(t2, a, relaxedmem.Relaxed))

	e.Store(t2, a+1, 1, relaxedmem.Relaxed)
	observed = append(observed, e.Load(t1, a+1, relaxedmem.Relaxed))

	for i := 0; i < 10; i++ {
		pre, ok := e.CompareExchangeWeak(t1, a, 1, 2, relaxedmem.Relaxed, relaxedmem.Relaxed)
		observed = append(observed, pre)
		if ok {
			observed = append(observed, 1)
		} else {
			observed = append(observed, 0)
		}
	}

	observed = append(observed, e.FetchOp(t2, a+1, func(v uint64) uint64 { return v + 1 }, relaxedmem.AcqRel))

	return observed
}

func TestDeterminismUnderFixedSeed(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 12345} {
		first := replay(seed)
		second := replay(seed)

		if len(first) != len(second) {
			t.Fatalf("seed %d: replay length mismatch: %d vs %d", seed, len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("seed %d: replay diverged at step %d: %d vs %d", seed, i, first[i], second[i])
			}
		}
	}
}

func TestDifferentSeedsCanDiverge(t *testing.T) {
	var results [][]uint64
	for seed := uint64(0); seed < 30; seed++ {
		results = append(results, replay(seed))
	}

	allSame := true
	for _, r := range results[1:] {
		if len(r) != len(results[0]) {
			allSame = false
			break
		}
		for i := range r {
			if r[i] != results[0][i] {
				allSame = false
				break
			}
		}
		if !allSame {
			break
		}
	}
	if allSame {
		t.Fatalf("expected at least one seed to diverge from seed 0 across 30 seeds")
	}
}
