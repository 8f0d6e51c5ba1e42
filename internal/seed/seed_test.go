package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/opsconsole/internal/apperr"
	"github.com/jask/opsconsole/internal/directory"
	"github.com/jask/opsconsole/internal/modes"
	"github.com/jask/opsconsole/internal/orders"
)

func TestDefaultSet(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	require.Len(t, set.Listings, 10)
	first := set.Listings[0]
	require.Equal(t, "1", first.ID)
	require.Equal(t, "Karim's", first.Name)
	require.Equal(t, directory.Coordinates{Lat: 28.6507, Lon: 77.2334}, first.Coordinates)
	require.Equal(t, directory.OperatingOpen, first.Operating)
	require.Equal(t, directory.OperatingClosed, set.Listings[2].Operating)

	require.Len(t, set.Orders, 2)
	require.Equal(t, "ORD-10294", set.Orders[1].ID)
	require.Equal(t, "Address clarification", set.Orders[1].Issue)
	require.InDelta(t, 2.7, set.Orders[1].DistanceKm, 1e-9)
	require.Empty(t, set.Orders[0].Issue)

	require.Equal(t, modes.Flags{Food: true, Delivery: true}, set.Modes)
	require.True(t, decimal.NewFromInt(1280).Equal(set.Wallet.Balance))
	require.Len(t, set.Wallet.Entries, 3)
	require.Len(t, set.TopUps, 3)
	require.Equal(t, "saket_user", set.TopUps[2].Account)
}

func TestDefaultSetBuildsStores(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	dir, err := directory.NewStore(set.Listings)
	require.NoError(t, err)
	require.Equal(t, 10, dir.Counts()[directory.ApprovalPending])

	_, err = orders.NewStore(set.Orders)
	require.NoError(t, err)
}

func TestMissingIDIsDerivedFromName(t *testing.T) {
	set, err := Parse([]byte(`
listings:
  - {name: "Moti Mahal", area: "Daryaganj", approval: Approved}
  - {name: "Moti Mahal", area: "Daryaganj"}
`))
	require.NoError(t, err)
	require.Equal(t, ListingID("Moti Mahal"), set.Listings[0].ID)
	require.Equal(t, set.Listings[0].ID, set.Listings[1].ID)
	require.Equal(t, directory.ApprovalApproved, set.Listings[0].Approval)
	require.Equal(t, directory.ApprovalStatus(""), set.Listings[1].Approval)
	require.Equal(t, directory.OperatingOpen, set.Listings[1].Operating)
}

func TestLoad(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	require.Len(t, set.Listings, 10)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orders:\n  - {id: A1, status: Preparing, distance_km: 1.5}\n"), 0o600))
	set, err = Load(path)
	require.NoError(t, err)
	require.Empty(t, set.Listings)
	require.Equal(t, "A1", set.Orders[0].ID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("listings: {"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
}

func TestModesAreParsedByName(t *testing.T) {
	set, err := Parse([]byte("modes:\n  Grocery: true\n  delivery: true\n"))
	require.NoError(t, err)
	require.Equal(t, modes.Flags{Grocery: true, Delivery: true}, set.Modes)

	_, err = Parse([]byte("modes:\n  pharmacy: true\n"))
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}
