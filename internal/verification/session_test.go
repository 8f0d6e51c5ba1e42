package verification

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/jask/opsconsole/internal/apperr"
)

func TestNewSessionIsActive(t *testing.T) {
	s := NewSession()
	snap := s.Snapshot()
	require.Equal(t, Active, snap.State())
	require.Equal(t, DefaultWindowSeconds, snap.Remaining)
	require.Equal(t, [CodeLength]string{}, snap.Digits)
	require.Equal(t, "2:00", snap.Countdown())
}

func TestCountdownExpiresAndClamps(t *testing.T) {
	s := NewSession()
	for i := 0; i < DefaultWindowSeconds; i++ {
		require.Equal(t, Active, s.Snapshot().State())
		s.Tick()
	}
	snap := s.Snapshot()
	require.Equal(t, Expired, snap.State())
	require.Equal(t, 0, snap.Remaining)

	snap = s.Tick()
	require.Equal(t, 0, snap.Remaining)
	require.Equal(t, "0:00", snap.Countdown())
}

func TestEnterDigit(t *testing.T) {
	s := NewSession()

	snap, err := s.EnterDigit(2, "7")
	require.NoError(t, err)
	require.Equal(t, "7", snap.Digits[2])

	for _, bad := range []string{"a", "77", "-", " ", "٣"} {
		snap, err = s.EnterDigit(2, bad)
		require.ErrorIs(t, err, apperr.ErrInvalidInput, bad)
		require.Equal(t, "7", snap.Digits[2])
	}

	snap, err = s.EnterDigit(2, "")
	require.NoError(t, err)
	require.Equal(t, "", snap.Digits[2])
}

func TestEnterDigitIndexOutOfRange(t *testing.T) {
	s := NewSession()
	_, err := s.EnterDigit(-1, "1")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = s.EnterDigit(CodeLength, "1")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	require.Equal(t, [CodeLength]string{}, s.Snapshot().Digits)
}

func TestCode(t *testing.T) {
	s := NewSession()
	for i, d := range []string{"4", "0", "9"} {
		_, err := s.EnterDigit(i, d)
		require.NoError(t, err)
	}
	_, ok := s.Snapshot().Code()
	require.False(t, ok)

	snap, err := s.EnterDigit(3, "1")
	require.NoError(t, err)
	code, ok := snap.Code()
	require.True(t, ok)
	require.Equal(t, "4091", code)
}

func TestResendWhileActiveFails(t *testing.T) {
	s := NewSession()
	_, err := s.EnterDigit(0, "5")
	require.NoError(t, err)
	s.Tick()
	before := s.Snapshot()

	snap, err := s.Resend()
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	require.Equal(t, before, snap)
	require.Equal(t, before, s.Snapshot())
}

func TestResendAfterExpiry(t *testing.T) {
	s := NewSession(WithWindow(3))
	_, err := s.EnterDigit(1, "8")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		s.Tick()
	}
	require.Equal(t, Expired, s.Snapshot().State())

	snap, err := s.Resend()
	require.NoError(t, err)
	require.Equal(t, Active, snap.State())
	require.Equal(t, 3, snap.Remaining)
	require.Equal(t, [CodeLength]string{}, snap.Digits)
}

func TestWithWindowIgnoresNonPositive(t *testing.T) {
	require.Equal(t, DefaultWindowSeconds, NewSession(WithWindow(0)).Snapshot().Remaining)
	require.Equal(t, DefaultWindowSeconds, NewSession(WithWindow(-5)).Snapshot().Remaining)
}

func TestStartTicksWithClock(t *testing.T) {
	mock := clock.NewMock()
	s := NewSession(WithClock(mock), WithWindow(3))
	s.Start(context.Background())
	t.Cleanup(s.Cancel)
	require.True(t, s.Running())

	for want := 2; want >= 0; want-- {
		mock.Add(time.Second)
		require.Eventually(t, func() bool { return s.Snapshot().Remaining == want },
			time.Second, time.Millisecond)
	}
	require.Equal(t, Expired, s.Snapshot().State())

	// Keeps clamping at zero while still running.
	mock.Add(time.Second)
	require.Never(t, func() bool { return s.Snapshot().Remaining != 0 }, 20*time.Millisecond, time.Millisecond)
}

func TestCancelStopsTicking(t *testing.T) {
	mock := clock.NewMock()
	s := NewSession(WithClock(mock))
	s.Start(context.Background())

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return s.Snapshot().Remaining == DefaultWindowSeconds-1 },
		time.Second, time.Millisecond)

	s.Cancel()
	require.False(t, s.Running())
	mock.Add(5 * time.Second)
	require.Equal(t, DefaultWindowSeconds-1, s.Snapshot().Remaining)

	// Cancelling twice is harmless.
	s.Cancel()
}

func TestStartTwiceRunsOneTicker(t *testing.T) {
	mock := clock.NewMock()
	s := NewSession(WithClock(mock))
	s.Start(context.Background())
	s.Start(context.Background())
	t.Cleanup(s.Cancel)

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return s.Snapshot().Remaining == DefaultWindowSeconds-1 },
		time.Second, time.Millisecond)
	require.Never(t, func() bool { return s.Snapshot().Remaining < DefaultWindowSeconds-1 },
		20*time.Millisecond, time.Millisecond)
}

func TestStartStopsWithContext(t *testing.T) {
	mock := clock.NewMock()
	s := NewSession(WithClock(mock))
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	require.Eventually(t, func() bool { return !s.Running() }, time.Second, time.Millisecond)
	s.Cancel()
}

func TestStateString(t *testing.T) {
	require.Equal(t, "active", Active.String())
	require.Equal(t, "expired", Expired.String())
}
