package main

import (
	"fmt"
	"os"

	"github.com/de-tools/vgsales-report/pkg/runtime/terminal"
	"github.com/de-tools/vgsales-report/pkg/services/metrics"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: metrics.DefaultRegistry(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
