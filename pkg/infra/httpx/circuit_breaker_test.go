package httpx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_Execute(t *testing.T) {
	t.Run("passes through success", func(t *testing.T) {
		breaker := NewCircuitBreaker("ok", time.Second, 3)

		calls := 0
		err := breaker.Execute(func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("wraps the underlying error with the breaker name", func(t *testing.T) {
		breaker := NewCircuitBreaker("imagemod", time.Second, 3)

		underlying := errors.New("connection refused")
		err := breaker.Execute(func() error { return underlying })

		assert.Error(t, err)
		assert.ErrorIs(t, err, underlying)
		assert.Contains(t, err.Error(), "imagemod")
	})

	t.Run("fails fast after consecutive failures", func(t *testing.T) {
		breaker := NewCircuitBreaker("tripping", time.Minute, 2)

		boom := errors.New("boom")
		for i := 0; i < 2; i++ {
			_ = breaker.Execute(func() error { return boom })
		}

		calls := 0
		err := breaker.Execute(func() error {
			calls++
			return nil
		})

		assert.Error(t, err)
		assert.Equal(t, 0, calls, "open breaker must not invoke the call")
	})
}

func TestNoopBreaker(t *testing.T) {
	underlying := errors.New("direct")
	err := NoopBreaker{}.Execute(func() error { return underlying })
	assert.Same(t, underlying, err)
}
