package gateway

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNextTimestamp(t *testing.T) {
	base := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		last time.Time
		want time.Time
	}{
		{"empty log", base, time.Time{}, base},
		{"clock moved on", base.Add(time.Second), base, base.Add(time.Second)},
		{"same instant", base, base, base.Add(time.Microsecond)},
		{"clock went backwards", base.Add(-time.Minute), base, base.Add(time.Microsecond)},
		{"sub-microsecond now is truncated", base.Add(500 * time.Nanosecond), base, base.Add(time.Microsecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(NextTimestamp(tt.now, tt.last)), "got %v", NextTimestamp(tt.now, tt.last))
		})
	}
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	locks := NewKeyedMutex()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(id)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locks.size(), "idle keys are released")
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locks := NewKeyedMutex()
	unlockA := locks.Lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(uuid.New())
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}
