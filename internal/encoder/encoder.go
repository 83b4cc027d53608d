package encoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

var (
	// ErrEncoderClosed is returned by Submit once Finish has been called.
	ErrEncoderClosed = errors.New("encoder closed")
	// ErrNotStarted is returned by Submit before Start.
	ErrNotStarted = errors.New("encoder not started")
	// ErrOutOfOrder is returned when a frame index skips or repeats.
	ErrOutOfOrder = errors.New("frame out of order")
)

// State is the encoder lifecycle position.
type State int32

const (
	StateIdle     State = iota // Created, consumer not running
	StateRunning               // Accepting frames
	StateDraining              // Finish called, writing what is queued
	StateClosed                // Consumer exited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Stats summarises what the encoder has written.
type Stats struct {
	Frames    uint64 // Frames fully written to the sink
	Bytes     uint64 // Bytes written to the sink
	PeakQueue int    // Deepest the queue got
	Capacity  int    // Queue capacity
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithPool returns each frame's buffer to p after it has been written or
// discarded.
func WithPool(p *FramePool) Option {
	return func(e *Encoder) { e.pool = p }
}

// Encoder moves frames from one producer to a sink on its own goroutine.
// The queue is bounded, so Submit blocks while the sink falls behind.
type Encoder struct {
	sink  io.Writer
	queue chan Frame
	done  chan struct{}
	pool  *FramePool

	// submitMu serialises Submit and Finish so the queue is never closed
	// while a send is in flight.
	submitMu sync.Mutex
	next     uint32

	mu    sync.Mutex
	state State
	err   error

	frames atomic.Uint64
	bytes  atomic.Uint64
	peak   atomic.Int64
}

// NewEncoder returns an idle encoder writing to sink through a queue of
// capacity frames. The caller still owns sink and closes it after Finish.
func NewEncoder(sink io.Writer, capacity int, opts ...Option) *Encoder {
	if capacity < 1 {
		capacity = 1
	}
	e := &Encoder{
		sink:  sink,
		queue: make(chan Frame, capacity),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the consumer. Calling it more than once is a no-op.
func (e *Encoder) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return
	}
	e.state = StateRunning
	go e.run()
}

func (e *Encoder) run() {
	defer close(e.done)

	for f := range e.queue {
		if e.Err() != nil {
			// Keep receiving so the producer never blocks on a dead sink
			e.release(f)
			continue
		}

		n, err := e.sink.Write(f.Pix)
		e.bytes.Add(uint64(n))
		if err == nil && n < len(f.Pix) {
			err = io.ErrShortWrite
		}
		if err != nil {
			e.setErr(fmt.Errorf("writing frame %d: %w", f.Index, err))
		} else {
			e.frames.Add(1)
		}
		e.release(f)
	}
}

func (e *Encoder) release(f Frame) {
	if e.pool != nil && f.Buf != nil {
		e.pool.Put(f.Buf)
	}
}

func (e *Encoder) setErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
}

// Submit queues f, blocking while the queue is full. Frames must arrive with
// consecutive indices starting at 0.
func (e *Encoder) Submit(ctx context.Context, f Frame) error {
	e.submitMu.Lock()
	defer e.submitMu.Unlock()

	switch e.State() {
	case StateIdle:
		return ErrNotStarted
	case StateDraining, StateClosed:
		return ErrEncoderClosed
	}

	if f.Index != e.next {
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, f.Index, e.next)
	}

	select {
	case e.queue <- f:
	case <-ctx.Done():
		return ctx.Err()
	}
	e.next++

	depth := int64(len(e.queue))
	for {
		peak := e.peak.Load()
		if depth <= peak || e.peak.CompareAndSwap(peak, depth) {
			break
		}
	}

	return nil
}

// Finish stops accepting frames, waits for every queued frame to be written
// and returns the first write error. It is safe to call more than once.
func (e *Encoder) Finish() error {
	e.submitMu.Lock()
	defer e.submitMu.Unlock()

	e.mu.Lock()
	switch e.state {
	case StateIdle:
		e.state = StateClosed
		close(e.done)
		e.mu.Unlock()
		return nil
	case StateDraining, StateClosed:
		e.mu.Unlock()
		<-e.done
		return e.Err()
	}
	e.state = StateDraining
	e.mu.Unlock()

	close(e.queue)
	<-e.done

	e.mu.Lock()
	e.state = StateClosed
	err := e.err
	e.mu.Unlock()
	return err
}

// State returns the current lifecycle state.
func (e *Encoder) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the first write error, if any.
func (e *Encoder) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Stats returns a snapshot of the encoder counters.
func (e *Encoder) Stats() Stats {
	return Stats{
		Frames:    e.frames.Load(),
		Bytes:     e.bytes.Load(),
		PeakQueue: int(e.peak.Load()),
		Capacity:  cap(e.queue),
	}
}

// QueueDepth returns the number of frames waiting to be written.
func (e *Encoder) QueueDepth() int {
	return len(e.queue)
}
