package main

import (
	"os"

	"github.com/yzx9/aim/cmd"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
