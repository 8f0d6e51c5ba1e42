// Package seed loads the entity set every console session starts from.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jask/opsconsole/internal/directory"
	"github.com/jask/opsconsole/internal/modes"
	"github.com/jask/opsconsole/internal/orders"
	"github.com/jask/opsconsole/internal/wallet"
)

//go:embed default.yaml
var defaultYAML []byte

// Set is everything a session is seeded with.
type Set struct {
	Listings []directory.Listing
	Orders   []orders.Order
	Modes    modes.Flags
	Wallet   wallet.Ledger
	TopUps   []wallet.Entry
}

type file struct {
	Listings []listing       `yaml:"listings"`
	Orders   []order         `yaml:"orders"`
	Modes    map[string]bool `yaml:"modes"`
	Wallet   ledgerFile      `yaml:"wallet"`
	TopUps   []entry         `yaml:"topups"`
}

type listing struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Area     string  `yaml:"area"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Open     *bool   `yaml:"open"`
	Approval string  `yaml:"approval"`
}

type order struct {
	ID         string  `yaml:"id"`
	Status     string  `yaml:"status"`
	Issue      string  `yaml:"issue"`
	ETA        string  `yaml:"eta"`
	Address    string  `yaml:"address"`
	DistanceKm float64 `yaml:"distance_km"`
	Partner    string  `yaml:"partner"`
}

type ledgerFile struct {
	Balance float64 `yaml:"balance"`
	Entries []entry `yaml:"entries"`
}

type entry struct {
	ID      string  `yaml:"id"`
	Account string  `yaml:"account"`
	Amount  float64 `yaml:"amount"`
	At      string  `yaml:"at"`
}

// Default returns the built-in seed set.
func Default() (Set, error) {
	return Parse(defaultYAML)
}

// Load reads a seed file. An empty path means the built-in set.
func Load(path string) (Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read seed: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return Set{}, fmt.Errorf("seed %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a YAML seed document.
func Parse(data []byte) (Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Set{}, fmt.Errorf("decode seed: %w", err)
	}

	var set Set
	for _, l := range f.Listings {
		set.Listings = append(set.Listings, l.toListing())
	}
	for _, o := range f.Orders {
		set.Orders = append(set.Orders, orders.Order{
			ID:                o.ID,
			DeliveryStatus:    o.Status,
			Issue:             o.Issue,
			ETA:               o.ETA,
			Address:           o.Address,
			DistanceKm:        o.DistanceKm,
			AssignedPartnerID: o.Partner,
		})
	}
	for name, on := range f.Modes {
		flag, err := modes.ParseFlag(name)
		if err != nil {
			return Set{}, fmt.Errorf("seed modes: %w", err)
		}
		set.Modes = set.Modes.With(flag, on)
	}
	set.Wallet = wallet.Ledger{Balance: decimal.NewFromFloat(f.Wallet.Balance)}
	for _, e := range f.Wallet.Entries {
		set.Wallet.Entries = append(set.Wallet.Entries, e.toEntry())
	}
	for _, e := range f.TopUps {
		set.TopUps = append(set.TopUps, e.toEntry())
	}
	return set, nil
}

func (l listing) toListing() directory.Listing {
	id := strings.TrimSpace(l.ID)
	if id == "" {
		id = ListingID(l.Name)
	}
	operating := directory.OperatingOpen
	if l.Open != nil && !*l.Open {
		operating = directory.OperatingClosed
	}
	return directory.Listing{
		ID:          id,
		Name:        l.Name,
		Area:        l.Area,
		Coordinates: directory.Coordinates{Lat: l.Lat, Lon: l.Lon},
		Approval:    directory.ApprovalStatus(strings.ToLower(strings.TrimSpace(l.Approval))),
		Operating:   operating,
	}
}

func (e entry) toEntry() wallet.Entry {
	return wallet.Entry{ID: e.ID, Account: e.Account, Amount: decimal.NewFromFloat(e.Amount), At: e.At}
}

// ListingID derives a stable id from a listing name.
func ListingID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("listing:"+strings.TrimSpace(name))).String()
}
