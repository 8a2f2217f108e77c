package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(2)
	assert.False(t, ec.HasErrors())

	ec.AddRequiredError(2, "sku")
	ec.AddTypeError(3, "price", "number", "abc")
	ec.Add(NewRowErrorWithValue(4, "sku", ErrCodeImportNotFound, "no sales listing with this code", "X-1"))

	assert.True(t, ec.HasErrors())
	assert.True(t, ec.IsTruncated())
	assert.Equal(t, 3, ec.TotalCount())
	assert.Len(t, ec.Errors(), 2)

	first, second := ec.Errors()[0], ec.Errors()[1]
	assert.Equal(t, ErrCodeImportRequiredField, first.Code)
	assert.Equal(t, `row 2, column "sku": value is required`, first.Error())
	assert.Equal(t, ErrCodeImportInvalidType, second.Code)
	assert.Equal(t, "abc", second.Value)
}

func TestRowError_WithoutColumn(t *testing.T) {
	assert.Equal(t, "row 7: short row", RowError{Row: 7, Message: "short row"}.Error())
	assert.Equal(t, 100, NewErrorCollection(0).max)
}
