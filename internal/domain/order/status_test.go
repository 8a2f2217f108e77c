package order

import (
	"encoding/json"
	"testing"

	"github.com/orderops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Flags(t *testing.T) {
	var s Status
	assert.True(t, s.IsEmpty())
	assert.True(t, s.IsUnshipped())

	s = s.With(StatusOrdered)
	assert.True(t, s.Has(StatusOrdered))
	assert.True(t, s.IsUnshipped())

	s = s.With(StatusShipping).With(StatusShipping)
	assert.True(t, s.Has(StatusShipping))
	assert.False(t, s.IsUnshipped())
	assert.Equal(t, []string{"ordered", "shipping"}, s.Names())
	assert.Equal(t, "ordered,shipping", s.String())

	s = s.Without(StatusShipping)
	assert.True(t, s.IsUnshipped())
	assert.False(t, s.Has(0))
}

func TestStatus_Dispatched(t *testing.T) {
	s := StatusShipping.With(StatusDispatched)
	assert.False(t, s.IsUnshipped())
	assert.True(t, s.IsValid())
	assert.False(t, Status(1<<7).IsValid())
}

func TestParseStatus(t *testing.T) {
	t.Run("known names", func(t *testing.T) {
		s, err := ParseStatus([]string{"shipping", " partially_shipped ", ""})
		require.NoError(t, err)
		assert.Equal(t, StatusShipping|StatusPartiallyShipped, s)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := ParseStatus([]string{"sh"})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(StatusOrdered | StatusDispatched)
	require.NoError(t, err)
	assert.JSONEq(t, `["ordered","dispatched"]`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`["dispatched","ordered"]`), &s))
	assert.Equal(t, StatusOrdered|StatusDispatched, s)

	var empty Status
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
