package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSleepOrdersByTime(t *testing.T) {
	k := NewKernel(0)
	var order []string
	k.Spawn(func(p *Proc) {
		p.Sleep(30)
		order = append(order, "slow")
	})
	k.Spawn(func(p *Proc) {
		p.Sleep(10)
		order = append(order, "fast")
	})
	k.Run()
	require.Equal(t, []string{"fast", "slow"}, order)
}

func TestEqualTimestampsFIFO(t *testing.T) {
	k := NewKernel(0)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		k.Spawn(func(p *Proc) {
			p.Sleep(10)
			order = append(order, i)
		})
	}
	k.Run()
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestEventFireWakesWaiter(t *testing.T) {
	k := NewKernel(0)
	ev := k.NewEvent()
	var got any
	k.Spawn(func(p *Proc) {
		got = p.Wait(ev)
	})
	k.Spawn(func(p *Proc) {
		p.Sleep(5)
		ev.Fire(42)
	})
	k.Run()
	require.Equal(t, 42, got)
}

func TestWaitRegisteredAfterFireReturnsImmediately(t *testing.T) {
	k := NewKernel(0)
	ev := k.NewEvent()
	ev.Fire("done")
	var got any
	k.Spawn(func(p *Proc) {
		got = p.Wait(ev)
	})
	k.Run()
	require.Equal(t, "done", got)
}

func TestWaitAllCollectsAllValues(t *testing.T) {
	k := NewKernel(0)
	e1, e2, e3 := k.NewEvent(), k.NewEvent(), k.NewEvent()
	var got []any
	k.Spawn(func(p *Proc) {
		got = p.WaitAll(e1, e2, e3)
	})
	k.Spawn(func(p *Proc) { p.Sleep(30); e1.Fire("a") })
	k.Spawn(func(p *Proc) { p.Sleep(10); e2.Fire("b") })
	k.Spawn(func(p *Proc) { p.Sleep(20); e3.Fire("c") })
	k.Run()
	require.Equal(t, []any{"a", "b", "c"}, got)
	require.EqualValues(t, 30, k.Clock)
}

func TestWaitAllEmptyReturnsImmediately(t *testing.T) {
	k := NewKernel(0)
	var got []any
	called := false
	k.Spawn(func(p *Proc) {
		got = p.WaitAll()
		called = true
	})
	k.Run()
	require.True(t, called)
	require.Nil(t, got)
}

func TestTimerFiresNaturallyWithoutInterrupt(t *testing.T) {
	k := NewKernel(0)
	var interrupted bool
	k.Spawn(func(p *Proc) {
		timer := p.NewTimer(50)
		interrupted, _ = p.WaitTimer(timer)
	})
	k.Run()
	require.False(t, interrupted)
	require.EqualValues(t, 50, k.Clock)
}

func TestTimerInterruptPreemptsNaturalExpiry(t *testing.T) {
	k := NewKernel(0)
	var interrupted bool
	var reason any
	var timer *Timer
	k.Spawn(func(p *Proc) {
		timer = p.NewTimer(100)
		interrupted, reason = p.WaitTimer(timer)
	})
	k.Spawn(func(p *Proc) {
		p.Sleep(10)
		timer.Interrupt("replaced")
	})
	k.Run()
	require.True(t, interrupted)
	require.Equal(t, "replaced", reason)
	require.EqualValues(t, 10, k.Clock)
}

func TestInterruptAtExactFireTimeTakesPrecedence(t *testing.T) {
	// Exercises the tie-break: the interrupt is scheduled for the same
	// virtual time the timer would naturally fire. Per spec, interrupts
	// take precedence over the interrupted timer in that case.
	k := NewKernel(0)
	var interrupted bool
	var timer *Timer
	k.Spawn(func(p *Proc) {
		timer = p.NewTimer(20)
		interrupted, _ = p.WaitTimer(timer)
	})
	k.Spawn(func(p *Proc) {
		p.Sleep(20)
		timer.Interrupt("tie")
	})
	k.Run()
	require.True(t, interrupted)
}

func TestSpawnedFiberDoesNotPreemptCaller(t *testing.T) {
	k := NewKernel(0)
	var order []string
	k.Spawn(func(p *Proc) {
		order = append(order, "parent-start")
		p.k.Spawn(func(p *Proc) {
			order = append(order, "child")
		})
		order = append(order, "parent-end")
	})
	k.Run()
	require.Equal(t, []string{"parent-start", "parent-end", "child"}, order)
}
