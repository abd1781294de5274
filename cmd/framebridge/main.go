// Command framebridge builds the pillar annotator as a C shared library:
//
//	go build -buildmode=c-shared -o libframebridge.so ./cmd/framebridge
//
// The host passes a BGR frame buffer it owns; the buffer is outlined in place.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"
)

// ProcessFrame outlines the green and red regions of a width*height BGR
// buffer in place. It returns 0 on success, 1 for invalid input and 2 for
// any other failure.
//
//export ProcessFrame
func ProcessFrame(data *C.uint8_t, width, height C.int32_t) C.int32_t {
	var buf []byte
	if data != nil && width > 0 && height > 0 {
		buf = unsafe.Slice((*byte)(unsafe.Pointer(data)), int(width)*int(height)*3)
	}
	return C.int32_t(processFrame(buf, int(width), int(height)))
}

// ConfigureDetection replaces the active detection config with the JSON
// attribute object in config. A NULL or empty string restores the defaults.
// It returns 0 on success and 1 when the config is rejected.
//
//export ConfigureDetection
func ConfigureDetection(config *C.char) C.int32_t {
	var raw string
	if config != nil {
		raw = C.GoString(config)
	}
	return C.int32_t(configure(raw))
}

func main() {}
