// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package relaxedmem

// RaceEnabled is true when the race detector is active.
// Used by tests to scale down goroutine and iteration counts in
// concurrent stress tests, which are otherwise slow enough under -race
// to make the test suite impractical without changing what they verify.
const RaceEnabled = true
