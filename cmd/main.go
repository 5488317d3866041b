package main

import (
	"os"

	"github.com/PippinJewel/quiz-platform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
