package orderapp

import (
	"testing"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestDeduplicationGate_Partition(t *testing.T) {
	gate := NewDeduplicationGate()
	raws := []order.RawOrder{
		{ReferenceNo: "R1", SKU: "a"},
		{ReferenceNo: "R2", SKU: "b"},
		{ReferenceNo: "R2", SKU: "c"},
		{ReferenceNo: "R3", SKU: "d"},
	}

	t.Run("nothing known", func(t *testing.T) {
		accepted, dups := gate.Partition(raws, map[string]struct{}{})
		assert.Len(t, accepted, 4, "repeated reference within one upload is not a duplicate")
		assert.Empty(t, dups)
	})

	t.Run("known references are rejected per reference", func(t *testing.T) {
		accepted, dups := gate.Partition(raws, map[string]struct{}{"R2": {}})
		assert.Len(t, accepted, 2)
		assert.Equal(t, "R1", accepted[0].ReferenceNo)
		assert.Equal(t, "R3", accepted[1].ReferenceNo)

		if assert.Len(t, dups, 2) {
			assert.Equal(t, 2, dups[0].Row)
			assert.Equal(t, "b", dups[0].SKU)
			assert.Equal(t, 3, dups[1].Row)
			assert.Equal(t, shared.CodeDuplicate, dups[1].Code)
			assert.Equal(t, "duplicate", dups[1].ErrorType)
			assert.Contains(t, dups[1].Message, "R2")
		}
		assert.Equal(t, len(raws), len(accepted)+len(dups))
	})

	t.Run("nil known set", func(t *testing.T) {
		accepted, dups := gate.Partition(raws, nil)
		assert.Len(t, accepted, 4)
		assert.Empty(t, dups)
	})
}
