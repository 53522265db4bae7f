package scheduler

import "context"

// Job is the completion handle of a task started with Start.
type Job struct {
	done chan struct{}
	err  error
}

// Start drives task on a new goroutine and returns immediately.
// The caller must not touch whatever the task mutates until the job is done.
func Start(ctx context.Context, task Task, opts ...Option) *Job {
	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		j.err = Run(ctx, task, opts...)
	}()
	return j
}

// Completed returns a job that has already finished with err.
func Completed(err error) *Job {
	j := &Job{done: make(chan struct{}), err: err}
	close(j.done)
	return j
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes and returns its error.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}
