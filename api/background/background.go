package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Background runs fire-and-forget tasks on their own goroutines while
// still allowing the server to wait for them during shutdown.
type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

// Add schedules task on a new goroutine. Errors returned by the task
// are logged, never propagated: tasks must not affect the request that
// spawned them.
func (b *Background) Add(task func() error) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		defer func() {
			if rec := recover(); rec != nil {
				b.log.Errorf("background task panic [%v] trace[%s]", rec, debug.Stack())
			}
		}()

		if err := task(); err != nil {
			b.log.Errorf("background task: %v", err)
		}
	}()
}

// Shutdown waits for in-flight tasks to finish or for ctx to expire.
func (b *Background) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
