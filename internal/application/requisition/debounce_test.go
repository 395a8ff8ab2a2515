package requisition

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesRapidCalls(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		value := int32(i)
		d.Schedule("key", func() {
			calls.Add(1)
			last.Store(value)
		})
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(5), last.Load(), "the last scheduled call wins")
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32

	d.Schedule("a", func() { calls.Add(1) })
	d.Schedule("b", func() { calls.Add(1) })

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	d.Schedule("key", func() { calls.Add(1) })
	d.Cancel("key")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDebouncer_Flush(t *testing.T) {
	d := NewDebouncer(10 * time.Second)
	var calls atomic.Int32

	d.Schedule("key", func() { calls.Add(1) })
	d.Flush("key")

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// flushing again is a no-op
	d.Flush("key")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_CancelAll(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	d.Schedule("a", func() { calls.Add(1) })
	d.Schedule("b", func() { calls.Add(1) })
	d.CancelAll()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
