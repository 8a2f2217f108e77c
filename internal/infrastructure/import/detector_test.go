package csvimport

import (
	"strings"
	"testing"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/import/importtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tabs := []byte(strings.Repeat("a\t", 11))
	commas := []byte(strings.Repeat("a,", 11))
	few := []byte("a,b\tc")

	tests := []struct {
		name    string
		file    string
		content []byte
		want    Format
	}{
		{"txt extension wins", "prices.TXT", commas, FormatTab},
		{"csv extension wins", "prices.csv", tabs, FormatComma},
		{"xlsx extension", "prices.xlsx", commas, FormatSpreadsheet},
		{"sniff tabs", "prices", tabs, FormatTab},
		{"sniff commas", "prices.dat", commas, FormatComma},
		{"more commas than tabs", "export", append(append([]byte{}, tabs...), append(commas, commas...)...), FormatComma},
		{"below threshold", "export", few, FormatSpreadsheet},
		{"zip magic", "export", append([]byte("PK\x03\x04"), commas...), FormatSpreadsheet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, tt.content))
		})
	}
}

func TestDetectFormat_SamplesFirstKiB(t *testing.T) {
	content := append([]byte(strings.Repeat("x", 1024)), []byte(strings.Repeat(",", 50))...)
	assert.Equal(t, FormatSpreadsheet, DetectFormat("upload", content))
}

func TestDetectOrderFiles(t *testing.T) {
	orderFile := File{Name: "YahooOrder_20240101.csv", Content: []byte("x")}
	productFile := File{Name: "YahooProduct_20240101.csv", Content: []byte("y")}

	t.Run("Yahoo roles", func(t *testing.T) {
		set, err := DetectOrderFiles(order.MarketplaceYahoo, []File{productFile, orderFile})
		require.NoError(t, err)
		assert.Equal(t, orderFile.Name, set.Orders.Name)
		assert.Equal(t, productFile.Name, set.Products.Name)
	})

	t.Run("Yahoo missing product names the role", func(t *testing.T) {
		_, err := DetectOrderFiles(order.MarketplaceYahoo, []File{orderFile})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), RoleYahooProduct)
		assert.NotContains(t, err.Error(), RoleYahooOrder+",")
	})

	t.Run("Yahoo missing both", func(t *testing.T) {
		_, err := DetectOrderFiles(order.MarketplaceYahoo, []File{{Name: "orders.csv"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YahooOrder, YahooProduct")
	})

	t.Run("Yahoo duplicate role", func(t *testing.T) {
		_, err := DetectOrderFiles(order.MarketplaceYahoo, []File{orderFile, orderFile, productFile})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("Amazon exactly one", func(t *testing.T) {
		set, err := DetectOrderFiles(order.MarketplaceAmazon, []File{{Name: "amazon.txt"}})
		require.NoError(t, err)
		assert.Equal(t, "amazon.txt", set.Orders.Name)

		_, err = DetectOrderFiles(order.MarketplaceAmazon, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), RoleAmazonOrder)

		_, err = DetectOrderFiles(order.MarketplaceAmazon, []File{{Name: "a"}, {Name: "b"}})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("Unknown marketplace", func(t *testing.T) {
		_, err := DetectOrderFiles(order.Marketplace("rakuten"), []File{orderFile})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestReadTable_Spreadsheet(t *testing.T) {
	content, err := importtest.Spreadsheet(
		[]string{"sku", "price"},
		[][]string{{"SKU-1", "1,200"}, {"", ""}, {"SKU-2", "900"}},
	)
	require.NoError(t, err)

	format := DetectFormat("prices", content)
	require.Equal(t, FormatSpreadsheet, format)

	table, err := ReadTable(content, format, EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{"sku", "price"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "SKU-2", table.Rows[1].Get("sku"))
	assert.Equal(t, "1,200", table.Rows[0].Get("price"))
}

func TestReadSpreadsheet_Invalid(t *testing.T) {
	_, err := ReadSpreadsheet([]byte("not a workbook"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ReadSpreadsheet(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
