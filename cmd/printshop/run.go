package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
)

// run starts app, blocks until ctx is cancelled or fx requests shutdown, then
// stops it. It returns the process exit code.
func run(ctx context.Context, app *fx.App) int {
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build application: %v\n", err)
		return 1
	}

	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start application: %v\n", err)
		return 1
	}

	code := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		code = sig.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop application: %v\n", err)
		return 1
	}
	return code
}
