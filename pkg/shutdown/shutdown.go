package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CreateGracefulShutdownChannel returns a channel that receives SIGINT and
// SIGTERM.
func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	return gracefulShutdown
}

// ListenForShutdown blocks until a shutdown signal arrives, invokes the
// handler, waits out the grace period and then signals done.
func ListenForShutdown(
	notifier chan os.Signal,
	done chan bool,
	onShutdown func(),
	gracePeriod time.Duration,
	l *zap.Logger,
) {
	sig := <-notifier
	l.Sugar().Infow("Received shutdown signal", "signal", sig.String())
	onShutdown()
	time.Sleep(gracePeriod)
	done <- true
}
