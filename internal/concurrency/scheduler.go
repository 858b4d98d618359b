package concurrency

import (
	"sync"
	"sync/atomic"
)

// Job is a single unit of work submitted to a WorkStealingScheduler. It
// receives the id of the goroutine actually executing it, which is not
// necessarily the worker it was Submit-ed to — a stolen job runs under its
// thief's id. Callers that index per-worker state (a counter, a pooled
// scratch buffer) must key on this id, not the Submit-time one, since two
// jobs submitted to the same queue can otherwise end up running
// concurrently under two different thieves.
type Job func(workerID int)

// WorkStealingScheduler runs Jobs across a fixed pool of workers, each with
// its own queue. A worker with an empty queue steals from the next
// non-empty queue it finds rather than blocking, which keeps throughput up
// when block sizes are uneven (a common case for the last, partial block
// of a [0, N) split). It is driven explicitly via Drain rather than
// free-running goroutines, so the caller controls exactly when the batch
// completes — the parallel driver (internal/driver) uses this to bound one
// outer NND iteration to one Drain call.
type WorkStealingScheduler struct {
	workers    int
	queues     []*jobQueue
	stealIndex atomic.Uint32
}

type jobQueue struct {
	mu   sync.Mutex
	jobs []Job
}

// NewWorkStealingScheduler creates a scheduler with the given number of
// worker queues. numWorkers must be at least 1.
func NewWorkStealingScheduler(numWorkers int) *WorkStealingScheduler {
	if numWorkers < 1 {
		numWorkers = 1
	}

	queues := make([]*jobQueue, numWorkers)
	for i := range queues {
		queues[i] = &jobQueue{}
	}

	return &WorkStealingScheduler{
		workers: numWorkers,
		queues:  queues,
	}
}

// Submit enqueues a job onto the given worker's queue. workerID is reduced
// modulo the worker count so callers can submit round-robin without
// bounds-checking.
func (ws *WorkStealingScheduler) Submit(workerID int, job Job) {
	q := ws.queues[ws.index(workerID)]
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
}

// Drain runs every submitted job to completion across ws.workers goroutines,
// each pulling from its own queue and stealing from others once its queue
// empties. It returns once all queues are empty and every launched job has
// finished.
func (ws *WorkStealingScheduler) Drain() {
	var wg sync.WaitGroup
	wg.Add(ws.workers)
	for w := 0; w < ws.workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			for {
				job, ok := ws.take(workerID)
				if !ok {
					return
				}
				job(workerID)
			}
		}(w)
	}
	wg.Wait()
}

// take returns the next job for workerID, first from its own queue, then by
// stealing from the first non-empty other queue found, scanning every other
// queue starting at the last successful steal point.
func (ws *WorkStealingScheduler) take(workerID int) (Job, bool) {
	own := ws.index(workerID)
	q := ws.queues[own]
	if job, ok := q.pop(); ok {
		return job, true
	}

	start := int(ws.stealIndex.Load())
	for i := 0; i < ws.workers; i++ {
		victimID := (start + i) % ws.workers
		if victimID == own {
			continue
		}
		victim := ws.queues[victimID]
		if job, ok := victim.pop(); ok {
			ws.stealIndex.Store(uint32(victimID))
			return job, true
		}
	}

	return nil, false
}

func (ws *WorkStealingScheduler) index(workerID int) int {
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % ws.workers
}

func (q *jobQueue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, true
}
