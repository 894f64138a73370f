package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/whatif-advisor/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose()}

	root, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	value := os.Getenv("WHATIF_ADVISOR_DEBUG")
	return strings.EqualFold(value, "1") || strings.EqualFold(value, "true")
}
