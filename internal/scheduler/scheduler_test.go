package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3data/pipeline/internal/dao/rundao"
)

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New("every six hours", func(ctx context.Context, trigger rundao.Trigger) {})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron spec")
}

func TestNextFiresEverySixHoursOnTheHour(t *testing.T) {
	s, err := New(DefaultSpec, func(ctx context.Context, trigger rundao.Trigger) {})
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC)
	next := s.Next(now)
	assert.Equal(t, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), next)

	next = s.Next(next)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), next)
}

func TestNextRollsOverMidnight(t *testing.T) {
	s, err := New(DefaultSpec, func(ctx context.Context, trigger rundao.Trigger) {})
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 18, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), s.Next(now))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s, err := New(DefaultSpec, func(ctx context.Context, trigger rundao.Trigger) {})
	require.NoError(t, err)

	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
