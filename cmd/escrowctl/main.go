package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chris/order-escrow/pkg/app"
	"github.com/chris/order-escrow/pkg/config"
)

func main() {
	open := func(ctx context.Context, path string) (*app.Runtime, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		return app.Build(ctx, cfg)
	}

	if err := newRootCmd(open, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
