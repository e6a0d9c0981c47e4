package main

import (
	"os"

	"github.com/rolld/sales-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
