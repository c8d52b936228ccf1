// Package training drives the client side of an engagement-model run:
// idle -> pending -> success | empty | error, and back again on the next
// trigger.
package training

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/pulseboard-backend/internal/client/dashapi"
	"github.com/yungbote/pulseboard-backend/internal/domain/engagement"
)

var ErrClosed = errors.New("training flow closed")

type State int

const (
	StateIdle State = iota
	StatePending
	StateSuccess
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is what a view renders. Model is the model on display: it is
// replaced on success, cleared on empty and left untouched on error.
type Snapshot struct {
	State    State
	Lookback engagement.LookbackPeriod
	Model    *engagement.Model
	Err      error
	// Seq identifies the request the snapshot belongs to.
	Seq uint64
}

// Trainer is the slice of dashapi.Client the flow needs.
type Trainer interface {
	TrainEngagementModel(ctx context.Context, lookback engagement.LookbackPeriod) dashapi.TrainResult
}

type Flow struct {
	trainer Trainer

	mu      sync.Mutex
	snap    Snapshot
	seq     uint64
	closed  bool
	settled chan struct{}
	subs    map[int]func(Snapshot)
	nextSub int

	// notifyMu is taken before mu is released so subscribers observe
	// transitions in the order they happened.
	notifyMu sync.Mutex
}

func New(trainer Trainer) *Flow {
	settled := make(chan struct{})
	close(settled)
	return &Flow{
		trainer: trainer,
		settled: settled,
		subs:    make(map[int]func(Snapshot)),
	}
}

// Trigger starts a training request. It reports false without doing
// anything while a request is pending or after Close. The request runs
// without a deadline of its own; ctx is passed through unchanged.
func (f *Flow) Trigger(ctx context.Context, lookback engagement.LookbackPeriod) (bool, error) {
	if !lookback.Valid() {
		return false, fmt.Errorf("lookback period %d is not one of 30, 90, 180, 365", lookback)
	}

	f.mu.Lock()
	if f.closed || f.snap.State == StatePending {
		f.mu.Unlock()
		return false, nil
	}
	f.seq++
	seq := f.seq
	f.snap = Snapshot{
		State:    StatePending,
		Lookback: lookback,
		Model:    f.snap.Model,
		Seq:      seq,
	}
	f.settled = make(chan struct{})
	f.publishLocked()

	go func() {
		res := f.trainer.TrainEngagementModel(ctx, lookback)
		f.resolve(seq, res)
	}()
	return true, nil
}

func (f *Flow) resolve(seq uint64, res dashapi.TrainResult) {
	f.mu.Lock()
	if f.closed || seq != f.seq {
		f.mu.Unlock()
		return
	}
	next := Snapshot{Lookback: f.snap.Lookback, Seq: seq}
	switch {
	case res.Kind == dashapi.TrainSuccess && res.Model != nil:
		next.State = StateSuccess
		next.Model = res.Model
	case res.Kind == dashapi.TrainSuccess, res.Kind == dashapi.TrainEmpty:
		next.State = StateEmpty
	default:
		next.State = StateError
		next.Model = f.snap.Model
		next.Err = res.Err
		if next.Err == nil {
			next.Err = errors.New("training failed")
		}
	}
	f.snap = next
	close(f.settled)
	f.publishLocked()
}

// Reset abandons any pending request and returns to idle with nothing on
// display. A late response for the abandoned request is discarded.
func (f *Flow) Reset() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.seq++
	if f.snap.State == StatePending {
		close(f.settled)
	}
	f.snap = Snapshot{State: StateIdle, Seq: f.seq}
	f.publishLocked()
}

// publishLocked must be called with mu held; it releases mu.
func (f *Flow) publishLocked() {
	snap := f.snap
	subs := make([]func(Snapshot), 0, len(f.subs))
	for i := 0; i < f.nextSub; i++ {
		if fn, ok := f.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	f.notifyMu.Lock()
	f.mu.Unlock()
	defer f.notifyMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Subscribe registers fn for every transition after this call. Callbacks
// run synchronously and must not call back into the Flow.
func (f *Flow) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Wait blocks until no request is pending and returns the settled snapshot.
func (f *Flow) Wait(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	settled := f.settled
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-settled:
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return Snapshot{}, ErrClosed
	}
	return f.snap, nil
}

// Close drops subscribers and discards every resolution that arrives
// afterwards. An in-flight request is not cancelled.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.subs = map[int]func(Snapshot){}
	if f.snap.State == StatePending {
		close(f.settled)
	}
}
