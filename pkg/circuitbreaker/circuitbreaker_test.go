package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	cb := New[string](Config{Name: "test", FailureThreshold: 2, Timeout: time.Minute}, nil)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (string, error) { return "", boom })
		require.ErrorIs(t, err, boom)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (string, error) { return "never", nil })
	assert.True(t, IsOpen(err))
}

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	cb := New[int](Config{Name: "ok"}, nil)

	v, err := cb.Execute(func() (int, error) { return 42, nil })

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, IsOpen(err))
}
