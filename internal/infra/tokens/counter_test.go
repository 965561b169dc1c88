package tokens

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("abc"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 1, Estimate("héllo"[:3]))
}

func TestCounter_FallsBackWhenEncodingUnavailable(t *testing.T) {
	nop := zerolog.Nop()
	c := NewCounter("", &nop)
	var calls atomic.Int32
	c.load = func(string) (*tiktoken.Tiktoken, error) {
		calls.Add(1)
		return nil, errors.New("offline")
	}

	<-c.Load()
	assert.Equal(t, 5, c.Count("Vintage Denim Shop!!"))
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 1, c.Count("shop"))
	<-c.Load()
	assert.EqualValues(t, 1, calls.Load(), "encoding load is attempted once")
}

func TestCounter_DoesNotWaitForEncodingFetch(t *testing.T) {
	nop := zerolog.Nop()
	c := NewCounter("", &nop)
	release := make(chan struct{})
	c.load = func(string) (*tiktoken.Tiktoken, error) {
		<-release
		return nil, errors.New("offline")
	}
	defer close(release)

	done := make(chan int, 1)
	go func() { done <- c.Count("Vintage Denim Shop") }()

	select {
	case n := <-done:
		assert.Equal(t, Estimate("Vintage Denim Shop"), n)
	case <-time.After(time.Second):
		require.FailNow(t, "Count blocked on the encoding fetch")
	}

	select {
	case <-c.Load():
		require.FailNow(t, "load finished before the fetch was released")
	default:
	}
}
