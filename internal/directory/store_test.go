package directory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/opsconsole/internal/apperr"
)

func testListings() []Listing {
	return []Listing{
		{ID: "1", Name: "Karim's", Area: "Jama Masjid", Coordinates: Coordinates{Lat: 28.6507, Lon: 77.2334}, Operating: OperatingOpen},
		{ID: "2", Name: "Sita Ram Diwan Chand", Area: "Paharganj", Operating: OperatingOpen},
		{ID: "3", Name: "Punjabi by Nature", Area: "Connaught Place", Operating: OperatingClosed},
		{ID: "4", Name: "Bukhara", Area: "Chanakyapuri", Approval: ApprovalApproved},
		{ID: "5", Name: "Social", Area: "Hauz Khas"},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(testListings())
	require.NoError(t, err)
	return s
}

func ids(ls []Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestNewStoreDefaults(t *testing.T) {
	s := newTestStore(t)
	l, err := s.Get("5")
	require.NoError(t, err)
	require.Equal(t, ApprovalPending, l.Approval)
	require.Equal(t, OperatingOpen, l.Operating)
	require.Equal(t, 5, s.Len())
}

func TestNewStoreRejectsBadSeed(t *testing.T) {
	_, err := NewStore([]Listing{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewStore([]Listing{{ID: " ", Name: "a"}})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewStore([]Listing{{ID: "1", Name: "a", Approval: "maybe"}})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestListEmptyQueryReturnsAllInOrder(t *testing.T) {
	s := newTestStore(t)
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(s.List("", "")))
}

func TestListMatchesNameOrAreaCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	require.Equal(t, []string{"3"}, ids(s.List("NATURE", "")))
	require.Equal(t, []string{"5"}, ids(s.List("hauz", "")))
	// "an" hits Diwan Chand and Chanakyapuri.
	require.Equal(t, []string{"2", "4"}, ids(s.List("an", "")))
	require.Empty(t, s.List("sushi", ""))
}

func TestListMatchesQueryAsTyped(t *testing.T) {
	s := newTestStore(t)
	// Whitespace is part of the needle, so only multi-word names or areas match.
	require.Equal(t, []string{"1", "2", "3", "5"}, ids(s.List(" ", "")))
	require.Empty(t, s.List(" hauz", ""))
	require.Equal(t, []string{"5"}, ids(s.List("hauz ", "")))
}

func TestListPendingFilter(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Reject("2")
	require.NoError(t, err)

	got := s.List("", ApprovalPending)
	require.Equal(t, []string{"1", "3", "5"}, ids(got))
	for _, l := range got {
		require.Equal(t, ApprovalPending, l.Approval)
	}

	require.Equal(t, []string{"3"}, ids(s.List("place", ApprovalPending)))
	require.Empty(t, s.List("bukhara", ApprovalPending))
}

func TestApproveIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	first, err := s.Approve("1")
	require.NoError(t, err)
	second, err := s.Approve("1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, ApprovalApproved, second.Approval)
}

func TestApprovalLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Approve("1")
	require.NoError(t, err)
	l, err := s.Reject("1")
	require.NoError(t, err)
	require.Equal(t, ApprovalRejected, l.Approval)

	l, err = s.Approve("1")
	require.NoError(t, err)
	require.Equal(t, ApprovalApproved, l.Approval)
}

func TestApprovalUnknownID(t *testing.T) {
	s := newTestStore(t)
	before := s.List("", "")

	_, err := s.Approve("missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.Reject("missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.ToggleOperatingStatus("missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.Equal(t, before, s.List("", ""))
}

func TestToggleOperatingStatusKeepsApproval(t *testing.T) {
	s := newTestStore(t)
	l, err := s.ToggleOperatingStatus("4")
	require.NoError(t, err)
	require.Equal(t, OperatingClosed, l.Operating)
	require.Equal(t, ApprovalApproved, l.Approval)

	l, err = s.ToggleOperatingStatus("4")
	require.NoError(t, err)
	require.Equal(t, OperatingOpen, l.Operating)
}

func TestListReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	got := s.List("", "")
	got[0].Name = "changed"
	l, err := s.Get("1")
	require.NoError(t, err)
	require.Equal(t, "Karim's", l.Name)
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.Reject("2")
	require.Equal(t, map[ApprovalStatus]int{
		ApprovalPending:  3,
		ApprovalApproved: 1,
		ApprovalRejected: 1,
	}, s.Counts())
}

func TestParseApproval(t *testing.T) {
	got, err := ParseApproval(" Pending ")
	require.NoError(t, err)
	require.Equal(t, ApprovalPending, got)

	got, err = ParseApproval("")
	require.NoError(t, err)
	require.Equal(t, ApprovalStatus(""), got)

	_, err = ParseApproval("later")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSuggest(t *testing.T) {
	s := newTestStore(t)
	require.Equal(t, []string{"1"}, ids(s.Suggest("karem", 3)))
	require.Equal(t, []string{"4"}, ids(s.Suggest("bukara", 3)))
	require.Empty(t, s.Suggest("zzzzzz", 3))
	require.Empty(t, s.Suggest("", 3))
	require.Empty(t, s.Suggest("karem", 0))
}
