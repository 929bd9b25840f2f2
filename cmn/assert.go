// Package cmn provides common low-level types and utilities shared by every
// tsumugu package: typed errors, size helpers and small
// concurrency primitives.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import "fmt"

// Assert panics when cond is false. Used the way the teacher's packages use
// cmn.Assert: to mark invariants that indicate a programming error rather
// than a runtime condition callers should handle.
func Assert(cond bool) {
	if !cond {
		panic("assertion failed")
	}
}

func AssertMsg(cond bool, msg string) {
	if !cond {
		panic("assertion failed: " + msg)
	}
}

func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		panic("unexpected error: " + err.Error())
	}
}
