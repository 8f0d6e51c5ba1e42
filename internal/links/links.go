// Package links builds the outbound URLs the console hands to other apps:
// map viewer links for a listing and pre-filled messaging deep links.
package links

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultMapDelta is the half-size in degrees of the embedded map box.
const DefaultMapDelta = 0.01

// BoundingBox is ordered the way the embed URL expects it.
type BoundingBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// BoundingBoxFor returns (lon-δ, lat-δ, lon+δ, lat+δ).
func BoundingBoxFor(lat, lon, delta float64) BoundingBox {
	return BoundingBox{
		MinLon: lon - delta,
		MinLat: lat - delta,
		MaxLon: lon + delta,
		MaxLat: lat + delta,
	}
}

// String joins the box with encoded commas.
func (b BoundingBox) String() string {
	return strings.Join([]string{
		formatCoord(b.MinLon), formatCoord(b.MinLat), formatCoord(b.MaxLon), formatCoord(b.MaxLat),
	}, "%2C")
}

// MapLinks builds OpenStreetMap URLs.
type MapLinks struct {
	BaseURL string
	Delta   float64
}

// DefaultMapLinks points at openstreetmap.org.
func DefaultMapLinks() MapLinks {
	return MapLinks{BaseURL: "https://www.openstreetmap.org", Delta: DefaultMapDelta}
}

func (m MapLinks) base() string {
	if m.BaseURL == "" {
		return DefaultMapLinks().BaseURL
	}
	return strings.TrimRight(m.BaseURL, "/")
}

func (m MapLinks) delta() float64 {
	if m.Delta <= 0 {
		return DefaultMapDelta
	}
	return m.Delta
}

// EmbedURL returns the embeddable map with a marker at (lat, lon).
func (m MapLinks) EmbedURL(lat, lon float64) string {
	box := BoundingBoxFor(lat, lon, m.delta())
	return fmt.Sprintf("%s/export/embed.html?bbox=%s&layer=mapnik&marker=%s%%2C%s",
		m.base(), box, formatCoord(lat), formatCoord(lon))
}

// ViewURL returns the full-page map centred on (lat, lon).
func (m MapLinks) ViewURL(lat, lon float64) string {
	la, lo := formatCoord(lat), formatCoord(lon)
	return fmt.Sprintf("%s/?mlat=%s&mlon=%s#map=17/%s/%s", m.base(), la, lo, la, lo)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Messenger builds deep links that open a chat with a fixed phone number and
// a pre-filled message.
type Messenger struct {
	BaseURL string
	Phone   string
}

// Link appends text, percent-encoded, to the chat address.
func (m Messenger) Link(text string) string {
	base := strings.TrimRight(m.BaseURL, "/")
	return fmt.Sprintf("%s/%s?text=%s", base, m.Phone, EncodeComponent(text))
}

// EncodeComponent percent-encodes s for use inside a query value, using %20
// for spaces.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
