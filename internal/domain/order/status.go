package order

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orderops/backend/internal/domain/shared"
)

// Status is the set of lifecycle flags carried by an order.
// The zero value is an unshipped order with no flags.
type Status uint8

const (
	// StatusOrdered marks an order put back into the queue by a shipment cancel
	StatusOrdered Status = 1 << iota
	// StatusPartiallyShipped marks an order whose split left a remainder
	StatusPartiallyShipped
	// StatusShipping is the "sh" marker: a shipment row exists for the order
	StatusShipping
	// StatusDispatched is set by the completion upload and only removed by a completion cancel
	StatusDispatched
)

var statusNames = map[Status]string{
	StatusOrdered:          "ordered",
	StatusPartiallyShipped: "partially_shipped",
	StatusShipping:         "shipping",
	StatusDispatched:       "dispatched",
}

// allStatusFlags is ordered by bit value
var allStatusFlags = []Status{StatusOrdered, StatusPartiallyShipped, StatusShipping, StatusDispatched}

// Has reports whether every flag in f is set
func (s Status) Has(f Status) bool {
	return f != 0 && s&f == f
}

// With returns s with f added. Adding a flag twice is a no-op.
func (s Status) With(f Status) Status {
	return s | f
}

// Without returns s with f removed
func (s Status) Without(f Status) Status {
	return s &^ f
}

// IsEmpty reports whether no flag is set
func (s Status) IsEmpty() bool {
	return s == 0
}

// IsUnshipped reports whether the order has neither a shipment nor been dispatched
func (s Status) IsUnshipped() bool {
	return s&(StatusShipping|StatusDispatched) == 0
}

// IsValid reports whether s only contains known flags
func (s Status) IsValid() bool {
	var known Status
	for _, f := range allStatusFlags {
		known |= f
	}
	return s&^known == 0
}

// Names returns the flag names in bit order
func (s Status) Names() []string {
	names := make([]string, 0, len(allStatusFlags))
	for _, f := range allStatusFlags {
		if s.Has(f) {
			names = append(names, statusNames[f])
		}
	}
	return names
}

// String returns the comma separated flag names
func (s Status) String() string {
	return strings.Join(s.Names(), ",")
}

// ParseStatus builds a Status from flag names
func ParseStatus(names []string) (Status, error) {
	var s Status
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for f, n := range statusNames {
			if n == name {
				s = s.With(f)
				found = true
				break
			}
		}
		if !found {
			return 0, shared.NewValidationError(fmt.Sprintf("unknown status flag %q", name))
		}
	}
	return s, nil
}

// MarshalJSON renders the flag set as a list of names
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON accepts a list of names
func (s *Status) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseStatus(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
