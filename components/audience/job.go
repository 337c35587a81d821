package audience

import (
	"context"
	"sync"
)

// Job is the pending result of one generation request. It resolves exactly once.
type Job struct {
	batch  int
	cancel context.CancelFunc

	once    sync.Once
	done    chan struct{}
	records []Record
	err     error
}

func newJob(batch int, cancel context.CancelFunc) *Job {
	return &Job{
		batch:  batch,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Batch is the session-local sequence number of the request.
func (j *Job) Batch() int {
	if j == nil {
		return 0
	}
	return j.batch
}

// Done is closed once the job resolved.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job resolved or ctx ends.
func (j *Job) Wait(ctx context.Context) ([]Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-j.done:
		return CloneRecords(j.records), j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking; ok is false while pending.
func (j *Job) Result() (records []Record, err error, ok bool) {
	select {
	case <-j.done:
		return CloneRecords(j.records), j.err, true
	default:
		return nil, nil, false
	}
}

// Cancel aborts the underlying generation. The session treats it as a failure.
func (j *Job) Cancel() {
	if j != nil && j.cancel != nil {
		j.cancel()
	}
}

func (j *Job) resolve(records []Record, err error) {
	j.once.Do(func() {
		j.records = records
		j.err = err
		if j.cancel != nil {
			j.cancel()
		}
		close(j.done)
	})
}
