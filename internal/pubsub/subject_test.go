package pubsub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestSubscribe_ReplaysCurrentValue(t *testing.T) {
	s := NewSubject("initial")
	s.Publish("latest")

	ch, cancel := s.Subscribe()
	defer cancel()

	require.Equal(t, []string{"latest"}, drain(ch))
}

func TestPublish_DeliversEveryChangeInOrder(t *testing.T) {
	s := NewSubject(0)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	assert.Equal(t, []int{0, 1, 2, 3}, drain(ch))
	assert.Equal(t, 3, s.Value())
}

func TestPublish_OverflowKeepsNewest(t *testing.T) {
	s := NewSubjectWithBuffer(0, 2)
	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 1; i <= 10; i++ {
		s.Publish(i)
	}

	got := drain(ch)
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[len(got)-1])
}

func TestCancel_ClosesChannelAndIsIdempotent(t *testing.T) {
	s := NewSubject(false)
	ch, cancel := s.Subscribe()
	require.Equal(t, 1, s.subscribers())

	cancel()
	cancel()

	assert.Equal(t, 0, s.subscribers())
	drain(ch)
	_, ok := <-ch
	assert.False(t, ok)

	s.Publish(true)
}

func TestClose_ClosesSubscribersAndRejectsNew(t *testing.T) {
	s := NewSubject(1)
	ch, _ := s.Subscribe()
	s.Close()
	s.Close()

	drain(ch)
	_, ok := <-ch
	assert.False(t, ok)

	late, cancel := s.Subscribe()
	defer cancel()
	_, ok = <-late
	assert.False(t, ok)
}

func TestPublish_ConcurrentSafe(t *testing.T) {
	s := NewSubject(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ch, cancel := s.Subscribe()
			defer cancel()
			s.Publish(n)
			drain(ch)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, s.subscribers())
}
