package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	conc "github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOnEachBackend(t *testing.T, use func(t *testing.T, pool Pool)) {
	t.Helper()

	t.Run("goroutines", func(t *testing.T) {
		use(t, OfGoroutines())
	})

	t.Run("ants", func(t *testing.T) {
		p, err := ants.NewPool(4)
		require.NoError(t, err)
		defer p.Release()
		use(t, OfAnts(p))
	})

	t.Run("workerpool", func(t *testing.T) {
		wp := workerpool.New(4)
		defer wp.StopWait()
		use(t, OfWorkerpool(wp))
	})

	t.Run("conc", func(t *testing.T) {
		use(t, OfConc(conc.New()))
	})
}

func TestPool_SubmitRunsAllTasks(t *testing.T) {
	runOnEachBackend(t, func(t *testing.T, pool Pool) {
		var count int64
		var wg sync.WaitGroup
		const n = 20
		wg.Add(n)
		for i := 0; i < n; i++ {
			err := pool.Submit(func() {
				defer wg.Done()
				atomic.AddInt64(&count, 1)
			})
			require.NoError(t, err)
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for submitted tasks")
		}
		assert.Equal(t, int64(n), atomic.LoadInt64(&count))
	})
}
