// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package goruntime

import (
	"unsafe"
)

// Name returns the function name for the given pc. captureStack (in the
// runtime package) calls this once per frame returned by Callers to render
// a panicked task's stack into a kernelerr.Internal error message.
func Name(pc uintptr) string {
	f := findfunc(pc)
	if f._func == nil {
		return ""
	}

	str := &f.datap.funcnametab[f.nameOff]
	ss := stringStruct{str: unsafe.Pointer(str), len: findnull(str)}
	return *(*string)(unsafe.Pointer(&ss))
}
