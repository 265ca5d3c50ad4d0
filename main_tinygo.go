//go:build tinygo

package main

import (
	"tickfw/app"
	"tickfw/hal"
)

func main() {
	app.Run(hal.New())
}
