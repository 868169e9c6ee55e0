package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d should be available", i+1)
	}

	assert.False(t, tb.Allow(), "bucket should be exhausted")

	time.Sleep(time.Second + 100*time.Millisecond)
	assert.True(t, tb.Allow(), "bucket should refill after the period")
}

func TestTokenBucketReset(t *testing.T) {
	tb := NewTokenBucket(2, time.Hour)
	tb.Allow()
	tb.Allow()
	assert.False(t, tb.Allow())

	tb.Reset()
	assert.True(t, tb.Allow())
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 200*time.Millisecond)
	assert.True(t, tb.Allow())

	start := time.Now()
	tb.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, time.Second)

	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow(), "request %d should be allowed", i+1)
	}

	assert.False(t, sw.Allow(), "window should be full")

	time.Sleep(time.Second + 100*time.Millisecond)
	assert.True(t, sw.Allow(), "window should admit after sliding")
}

func TestSlidingWindowReset(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	assert.True(t, sw.Allow())
	assert.False(t, sw.Allow())

	sw.Reset()
	assert.True(t, sw.Allow())
}
