package orderapp

import (
	"fmt"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
)

// DuplicateReference reports a row rejected because its reference was already stored
type DuplicateReference struct {
	Row         int            `json:"row"`
	ReferenceNo string         `json:"reference_no"`
	SKU         string         `json:"sku"`
	ErrorType   string         `json:"error_type"`
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Order       order.RawOrder `json:"order"`
}

// DeduplicationGate splits normalized rows into new and already-known references
type DeduplicationGate struct{}

// NewDeduplicationGate creates a DeduplicationGate
func NewDeduplicationGate() *DeduplicationGate {
	return &DeduplicationGate{}
}

// Partition classifies every row. A row is a duplicate iff its reference is in
// known; rows sharing a reference within the same upload are not duplicates of
// each other. Every input row lands in exactly one of the two outputs, in input order.
func (g *DeduplicationGate) Partition(raws []order.RawOrder, known map[string]struct{}) ([]order.RawOrder, []DuplicateReference) {
	accepted := make([]order.RawOrder, 0, len(raws))
	duplicates := make([]DuplicateReference, 0)

	for i, raw := range raws {
		if _, seen := known[raw.ReferenceNo]; !seen {
			accepted = append(accepted, raw)
			continue
		}
		duplicates = append(duplicates, DuplicateReference{
			Row:         i + 1,
			ReferenceNo: raw.ReferenceNo,
			SKU:         raw.SKU,
			ErrorType:   "duplicate",
			Code:        shared.CodeDuplicate,
			Message:     fmt.Sprintf("order %s has already been imported", raw.ReferenceNo),
			Order:       raw,
		})
	}
	return accepted, duplicates
}
