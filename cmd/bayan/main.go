package main

import (
	"os"

	"github.com/msto63/bayan/cmd/bayan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
