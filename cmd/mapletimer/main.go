// mapletimer 刷怪/捡东西循环倒计时, 刷怪段结束时响提示音.
package main

import (
	"github.com/tebeka/atexit"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
