package order

import (
	"fmt"
	"strings"

	"github.com/orderops/backend/internal/domain/shared"
)

// Location is a warehouse an order ships from
type Location string

const (
	LocationNZBis Location = "nz_bis"
	LocationAusKN Location = "aus_kn"
)

// NZPrefix marks locations stocked from the New Zealand inventory column
const NZPrefix = "nz_"

// Locations returns the closed set of shipment locations
func Locations() []Location {
	return []Location{LocationNZBis, LocationAusKN}
}

// ParseLocation validates s against the closed location set
func ParseLocation(s string) (Location, error) {
	l := Location(strings.TrimSpace(s))
	if l.IsValid() {
		return l, nil
	}
	return "", shared.NewValidationError(fmt.Sprintf("unknown shipment location %q", s))
}

// IsValid checks if the location is part of the closed set
func (l Location) IsValid() bool {
	switch l {
	case LocationNZBis, LocationAusKN:
		return true
	}
	return false
}

// IsNZ reports whether stock for this location is read from the NZ column
func (l Location) IsNZ() bool {
	return IsNZLocation(string(l))
}

// String returns the string representation of Location
func (l Location) String() string {
	return string(l)
}

// IsNZLocation applies the prefix rule to any location string, including
// shipping origins that are not in the closed set.
func IsNZLocation(location string) bool {
	return strings.HasPrefix(location, NZPrefix)
}
