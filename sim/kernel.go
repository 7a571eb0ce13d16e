// Package sim implements the discrete-event simulation kernel: a
// single-threaded, cooperative virtual-time event loop. No wall-clock time
// enters the loop; every suspension point is an explicit call into the
// Kernel (Sleep, Wait, WaitAll, or a Timer).
//
// Concurrency is modeled, not used: each logical actor (NetworkInterface,
// CacheEngine, CPUShare, Executor) runs as a goroutine, but the Kernel
// guarantees that only one of them is ever runnable at a time — a fiber
// resumes, runs until it blocks on a Kernel primitive, and control returns
// to the Kernel before any other fiber is woken. Callers MUST NOT share
// mutable state across fibers without going through the Kernel's queue;
// doing so would reintroduce races the single-threaded model exists to
// avoid.
package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// Kernel drives the virtual-time event loop.
type Kernel struct {
	Clock   int64
	Horizon int64

	pq      eventPQ
	seq     int64
	parked  chan struct{}
	running bool
}

// NewKernel creates a Kernel with the given simulation horizon. A horizon of
// 0 means unbounded (the loop runs until no events remain).
func NewKernel(horizon int64) *Kernel {
	return &Kernel{
		Horizon: horizon,
		parked:  make(chan struct{}),
	}
}

// wakeup is a scheduled resumption of a parked fiber, or a synthetic
// callback with no fiber (used by one-shot Events fired by producers that
// are not themselves fibers, e.g. instantaneous completions).
type wakeup struct {
	time int64
	// prio breaks ties at equal timestamps before falling back to seq.
	// Interrupt wakeups use a lower (earlier) prio than ordinary wakeups, and
	// a timer's natural expiry a higher (later) one, so a fiber woken at the
	// timer's own fire time can still interrupt it, and the interrupt is
	// observed instead of the natural expiry.
	prio int
	seq  int64
	fn   func(k *Kernel)
	// canceled, when set and true at pop time, discards the wakeup without
	// advancing Clock (an interrupted timer's stale natural expiry).
	canceled func() bool
}

const (
	prioInterrupt = -1
	prioNormal    = 0
	prioTimer     = 1
)

type eventPQ []wakeup

func (q eventPQ) Len() int { return len(q) }
func (q eventPQ) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	if q[i].prio != q[j].prio {
		return q[i].prio < q[j].prio
	}
	return q[i].seq < q[j].seq
}
func (q eventPQ) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *eventPQ) Push(x any)        { *q = append(*q, x.(wakeup)) }
func (q *eventPQ) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (k *Kernel) nextSeq() int64 {
	s := k.seq
	k.seq++
	return s
}

// scheduleAt pushes a callback to run at the given virtual time, preserving
// FIFO order among callbacks scheduled at equal times.
func (k *Kernel) scheduleAt(t int64, fn func(k *Kernel)) {
	k.scheduleAtPriority(t, prioNormal, fn)
}

func (k *Kernel) scheduleAtPriority(t int64, prio int, fn func(k *Kernel)) {
	heap.Push(&k.pq, wakeup{time: t, prio: prio, seq: k.nextSeq(), fn: fn})
}

// Spawn starts fn as a fiber. The fiber begins running at the next tick of
// the event loop (time == k.Clock), after whichever fiber called Spawn has
// itself parked — this preserves FIFO ordering and prevents reentrant
// execution of two fibers at once.
func (k *Kernel) Spawn(fn func(p *Proc)) {
	p := &Proc{k: k, resume: make(chan wakeResult, 1)}
	k.scheduleAt(k.Clock, func(k *Kernel) {
		k.runFiber(p, fn)
	})
}

// runFiber starts (or resumes) a fiber's goroutine and blocks the Kernel
// until that fiber parks again or returns.
func (k *Kernel) runFiber(p *Proc, fn func(p *Proc)) {
	go func() {
		fn(p)
		k.parked <- struct{}{}
	}()
	<-k.parked
}

// resumeFiber sends a wakeup into a parked fiber and blocks the Kernel until
// it parks again or finishes.
func (k *Kernel) resumeFiber(p *Proc, wr wakeResult) {
	p.resume <- wr
	<-k.parked
}

// Run drains the event queue, advancing Clock to each event's timestamp in
// order, until the queue empties or Horizon is exceeded. Events at equal
// virtual times and equal priority fire in FIFO submission order.
func (k *Kernel) Run() {
	k.running = true
	for k.pq.Len() > 0 {
		w := heap.Pop(&k.pq).(wakeup)
		if w.canceled != nil && w.canceled() {
			continue
		}
		k.Clock = w.time
		if k.Horizon > 0 && k.Clock > k.Horizon {
			break
		}
		w.fn(k)
	}
	k.running = false
}

// wakeResult is delivered to a parked fiber when it is resumed.
type wakeResult struct {
	interrupted bool
	reason      any
	values      []any
}

// Proc is a fiber's handle onto the Kernel. Every blocking call parks the
// underlying goroutine and returns control to the Kernel's Run loop; callers
// must never perform I/O or block on anything but these primitives.
type Proc struct {
	k      *Kernel
	resume chan wakeResult
}

// park suspends the calling goroutine, tells the Kernel it is safe to
// proceed, and blocks until resumed.
func (p *Proc) park() wakeResult {
	p.k.parked <- struct{}{}
	return <-p.resume
}

// Sleep suspends the fiber until now+d.
func (p *Proc) Sleep(d int64) {
	if d < 0 {
		logrus.Panicf("sim: negative sleep duration %d", d)
	}
	at := p.k.Clock + d
	p.k.scheduleAt(at, func(k *Kernel) {
		k.resumeFiber(p, wakeResult{})
	})
	p.park()
}

// Event is a one-shot condition carrying a value. Waiting on an event that
// has already fired returns the stored value immediately, without
// suspending — firing is memoryful.
type Event struct {
	k       *Kernel
	fired   bool
	value   any
	waiters []func(k *Kernel)
}

// NewEvent creates a fresh, unfired Event bound to this Kernel.
func (k *Kernel) NewEvent() *Event {
	return &Event{k: k}
}

// Fire marks the event fired with value, waking any registered waiters (and
// any future Wait callers get the stored value immediately). Firing an
// already-fired event is a programming error — completion events fire at
// most once.
func (e *Event) Fire(value any) {
	if e.fired {
		logrus.Panicf("sim: event fired twice")
	}
	e.fired = true
	e.value = value
	waiters := e.waiters
	e.waiters = nil
	for _, w := range waiters {
		e.k.scheduleAt(e.k.Clock, w)
	}
}

// Fired reports whether the event has already fired.
func (e *Event) Fired() bool { return e.fired }

// Wait suspends the fiber until the event fires, returning its value.
func (p *Proc) Wait(e *Event) any {
	if e.fired {
		return e.value
	}
	e.waiters = append(e.waiters, func(k *Kernel) {
		k.resumeFiber(p, wakeResult{values: []any{e.value}})
	})
	r := p.park()
	if len(r.values) > 0 {
		return r.values[0]
	}
	return nil
}

// WaitAll suspends the fiber until every event in evs has fired, returning
// their values in the same order. An empty evs returns immediately.
func (p *Proc) WaitAll(evs ...*Event) []any {
	if len(evs) == 0 {
		return nil
	}
	values := make([]any, len(evs))
	pending := len(evs)
	for i, e := range evs {
		if e.fired {
			values[i] = e.value
			pending--
			continue
		}
		e.waiters = append(e.waiters, func(k *Kernel) {
			values[i] = e.value
			pending--
			if pending == 0 {
				k.resumeFiber(p, wakeResult{values: values})
			}
		})
	}
	if pending == 0 {
		return values
	}
	p.park()
	return values
}

// Timer is an interruptible, resettable sleep. Unlike Sleep, a Timer's
// pending wakeup can be cancelled by another fiber via Interrupt, which
// wakes the waiter immediately with an interrupt token instead of waiting
// for the original deadline.
type Timer struct {
	k        *Kernel
	fireAt   int64
	fired    bool
	canceled bool
	waiter   *Proc
}

// NewTimer schedules a timer to fire at now+d. The timer is inert until a
// fiber calls WaitTimer on it.
func (p *Proc) NewTimer(d int64) *Timer {
	return &Timer{k: p.k, fireAt: p.k.Clock + d}
}

// WaitTimer suspends the fiber until the timer fires or is interrupted.
// Returns (interrupted=false, nil) on natural expiry, or (interrupted=true,
// reason) if Interrupt was called first. A Timer may only be waited on by
// one fiber.
func (p *Proc) WaitTimer(t *Timer) (interrupted bool, reason any) {
	if t.fired || t.canceled {
		logrus.Panicf("sim: WaitTimer on an already-resolved timer")
	}
	t.waiter = p
	heap.Push(&t.k.pq, wakeup{
		time:     t.fireAt,
		prio:     prioTimer,
		seq:      t.k.nextSeq(),
		canceled: func() bool { return t.canceled },
		fn: func(k *Kernel) {
			t.fired = true
			k.resumeFiber(p, wakeResult{})
		},
	})
	r := p.park()
	return r.interrupted, r.reason
}

// Interrupt cancels a pending timer's natural expiry and immediately wakes
// its waiter with the given reason. Interrupting a timer that has already
// fired or been interrupted is a no-op, matching the kernel's "at most
// once" resolution discipline for waitable conditions.
func (t *Timer) Interrupt(reason any) {
	if t.fired || t.canceled || t.waiter == nil {
		return
	}
	t.canceled = true
	waiter := t.waiter
	t.k.scheduleAtPriority(t.k.Clock, prioInterrupt, func(k *Kernel) {
		k.resumeFiber(waiter, wakeResult{interrupted: true, reason: reason})
	})
}
