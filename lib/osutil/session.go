package osutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext is cancelled on the first SIGINT/SIGTERM so in-flight
// downloads can stop and partially written temp files get cleaned up.
// A second signal exits immediately with status 130.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		slog.Warn("interrupted, cancelling pending work", "signal", sig.String())
		cancel()

		<-sigs
		slog.Error("interrupted twice, exiting")
		os.Exit(130)
	}()

	return ctx
}
