package main

import (
	"os"
)

func main() {
	if !run(os.Stdin, os.Stdout) {
		os.Exit(1)
	}
}
