package shutdown

import (
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// The listener runs in a goroutine and the caller blocks on done; the
// process must actually get the done signal after the grace period.
func TestListenForShutdown_SignalsDoneToTheReceiver(t *testing.T) {
	notifier := make(chan os.Signal, 1)
	done := make(chan bool)
	var handled atomic.Bool

	go ListenForShutdown(notifier, done, func() {
		handled.Store(true)
	}, 10*time.Millisecond, zap.NewNop())

	notifier <- syscall.SIGTERM

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown listener never signalled done")
	}
	assert.True(t, handled.Load())
}
