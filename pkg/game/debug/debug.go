//go:build !(js && wasm)
// +build !js !wasm

package debug

import (
	"log"
	"os"
)

// TTT_DEBUG が設定されているときだけ出力する
var enabled = os.Getenv("TTT_DEBUG") != ""

func Log(format string, args ...any) {
	if !enabled {
		return
	}
	log.Printf("[debug] "+format, args...)
}
