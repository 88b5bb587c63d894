// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem

import "fmt"

// InvariantError reports a programming error: an invalid ordering level
// for the operation attempted, an out-of-range thread or address, or an
// internal impossibility such as an empty set of load candidates. It is
// always fatal and the engine never retries around it — a caller that
// wants that behavior wraps the engine and decides for itself.
//
// This is distinct from a failed CompareExchange/CompareExchangeWeak/
// FetchUpdate, which is the ordinary, always-expected way those calls
// report "your expected value was not current" and is reported as a
// plain (value, ok) result rather than an error.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("relaxedmem: %s: %s", e.Op, e.Msg)
}

// invariant panics with an *InvariantError built from op and the
// formatted message. Every precondition check in this package goes
// through here so that programming errors carry a consistent shape.
func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
