// Package worker runs background jobs on a partitioned pool. Jobs that share
// a key land on the same partition, so per-session work executes in the
// order it was submitted.
package worker

import (
	"hash/fnv"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
)

// Job is a unit of background work.
type Job func()

// Pool distributes jobs across fixed partitions.
type Pool struct {
	queues []chan Job
	wg     sync.WaitGroup
	closed atomic.Bool

	submitted atomic.Int64
	completed atomic.Int64
	dropped   atomic.Int64
}

// NewPool starts partitions goroutines, each draining its own queue.
func NewPool(partitions, queueSize int) *Pool {
	if partitions <= 0 {
		partitions = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	p := &Pool{queues: make([]chan Job, partitions)}
	for i := range p.queues {
		p.queues[i] = make(chan Job, queueSize)
		p.wg.Add(1)
		go p.run(i)
	}

	logger.Get().Info("Worker pool started",
		zap.Int("partitions", partitions),
		zap.Int("queue_size", queueSize))
	return p
}

func (p *Pool) run(partition int) {
	defer p.wg.Done()
	for job := range p.queues[partition] {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Get().Error("Worker job panicked",
						zap.Int("partition", partition),
						zap.Any("panic", r))
				}
			}()
			job()
		}()
		p.completed.Add(1)
	}
}

// Submit enqueues a job on the partition owned by key. Returns false when
// the pool is shut down or the partition's queue is full.
func (p *Pool) Submit(key string, job Job) bool {
	if p.closed.Load() {
		p.dropped.Add(1)
		return false
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	q := p.queues[h.Sum32()%uint32(len(p.queues))]

	select {
	case q <- job:
		p.submitted.Add(1)
		return true
	default:
		p.dropped.Add(1)
		logger.Get().Warn("Worker queue full, job dropped", zap.String("key", key))
		return false
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Shutdown() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}

// Stats is a point-in-time view of pool counters and queue depth.
type Stats struct {
	Partitions int   `json:"partitions"`
	Submitted  int64 `json:"submitted"`
	Completed  int64 `json:"completed"`
	Dropped    int64 `json:"dropped"`
	Queued     []int `json:"queued"`
}

func (p *Pool) Stats() Stats {
	s := Stats{
		Partitions: len(p.queues),
		Submitted:  p.submitted.Load(),
		Completed:  p.completed.Load(),
		Dropped:    p.dropped.Load(),
		Queued:     make([]int, len(p.queues)),
	}
	for i, q := range p.queues {
		s.Queued[i] = len(q)
	}
	return s
}

// MetricsHandler exposes pool counters for internal monitoring.
func (p *Pool) MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, p.Stats())
	}
}
