package wallet

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/opsconsole/internal/apperr"
	"github.com/jask/opsconsole/internal/links"
)

var testMessenger = links.Messenger{BaseURL: "https://wa.me", Phone: "918434805818"}

func messageOf(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("text")
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 500 ")
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(500).Equal(got))

	for _, raw := range []string{"", "12.5", "-3", "1e2", "abc", "0", "000"} {
		_, err := ParseAmount(raw)
		require.ErrorIs(t, err, apperr.ErrInvalidInput, raw)
	}
}

func TestUserTopUpLink(t *testing.T) {
	s := NewService(testMessenger, "₹", Limits{})
	link, err := s.UserTopUpLink("admin_user", "250", time.Now())
	require.NoError(t, err)
	require.Equal(t, "Hi PN'S, I want to top-up my wallet with ₹250 for username admin_user.", messageOf(t, link))
}

func TestAdminTopUpLink(t *testing.T) {
	s := NewService(testMessenger, "₹", Limits{})
	link, err := s.AdminTopUpLink(" rohini_user ", "1200", time.Now())
	require.NoError(t, err)
	require.Equal(t, "Admin top-up request: ₹1200 for username rohini_user", messageOf(t, link))
}

func TestTopUpValidation(t *testing.T) {
	s := NewService(testMessenger, "₹", Limits{})
	_, err := s.AdminTopUpLink("", "100", time.Now())
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = s.AdminTopUpLink("dwarka_user", "", time.Now())
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestTopUpRateLimit(t *testing.T) {
	s := NewService(testMessenger, "₹", Limits{PerMinute: 1, Burst: 2})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.UserTopUpLink("saket_user", "10", now)
	require.NoError(t, err)
	_, err = s.UserTopUpLink("SAKET_USER", "10", now)
	require.NoError(t, err)
	_, err = s.UserTopUpLink("saket_user", "10", now)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	// Other users have their own bucket.
	_, err = s.UserTopUpLink("dwarka_user", "10", now)
	require.NoError(t, err)

	// One token refills per minute.
	_, err = s.UserTopUpLink("saket_user", "10", now.Add(time.Minute))
	require.NoError(t, err)
}

func TestEntryCredit(t *testing.T) {
	require.True(t, Entry{Amount: decimal.NewFromInt(500)}.Credit())
	require.False(t, Entry{Amount: decimal.NewFromInt(-240)}.Credit())
}
