package csvimport

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
)

// Format is the physical layout of an uploaded file
type Format int

const (
	FormatComma Format = iota
	FormatTab
	FormatSpreadsheet
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatTab:
		return "tab"
	case FormatSpreadsheet:
		return "spreadsheet"
	}
	return "comma"
}

// Delimiter returns the field separator for text formats
func (f Format) Delimiter() rune {
	if f == FormatTab {
		return '\t'
	}
	return ','
}

const (
	sniffSampleSize = 1024
	sniffMinCount   = 10
)

// Role names used in validation messages and file matching
const (
	RoleYahooOrder   = "YahooOrder"
	RoleYahooProduct = "YahooProduct"
	RoleAmazonOrder  = "amazon order file"
)

var zipMagic = []byte("PK\x03\x04")

// File is an uploaded file held in memory
type File struct {
	Name    string
	Content []byte
}

// DetectFormat picks a parsing strategy from the file name, then from the content.
// .txt is tab separated and .csv comma separated. Otherwise the first KiB is
// sampled and the more frequent of tab and comma wins once it occurs more than
// ten times; anything else is treated as a spreadsheet.
func DetectFormat(fileName string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".tsv":
		return FormatTab
	case ".csv":
		return FormatComma
	case ".xlsx", ".xlsm":
		return FormatSpreadsheet
	}
	if bytes.HasPrefix(content, zipMagic) {
		return FormatSpreadsheet
	}

	sample := content
	if len(sample) > sniffSampleSize {
		sample = sample[:sniffSampleSize]
	}
	tabs := bytes.Count(sample, []byte{'\t'})
	commas := bytes.Count(sample, []byte{','})

	switch {
	case tabs > sniffMinCount && tabs >= commas:
		return FormatTab
	case commas > sniffMinCount:
		return FormatComma
	}
	return FormatSpreadsheet
}

// OrderFileSet holds the files of one order ingestion, by role
type OrderFileSet struct {
	Marketplace order.Marketplace
	// Orders is the Yahoo order file or the single Amazon file
	Orders File
	// Products is the Yahoo product file; empty for Amazon
	Products File
}

// DetectOrderFiles assigns uploaded files to the roles a marketplace requires.
// Yahoo needs one file prefixed YahooOrder and one prefixed YahooProduct;
// Amazon needs exactly one file.
func DetectOrderFiles(marketplace order.Marketplace, files []File) (*OrderFileSet, error) {
	set := &OrderFileSet{Marketplace: marketplace}

	switch marketplace {
	case order.MarketplaceYahoo:
		var orders, products []File
		for _, f := range files {
			base := filepath.Base(f.Name)
			switch {
			case strings.HasPrefix(base, RoleYahooOrder):
				orders = append(orders, f)
			case strings.HasPrefix(base, RoleYahooProduct):
				products = append(products, f)
			}
		}
		var missing []string
		if len(orders) == 0 {
			missing = append(missing, RoleYahooOrder)
		}
		if len(products) == 0 {
			missing = append(missing, RoleYahooProduct)
		}
		if len(missing) > 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("missing required file(s): %s", strings.Join(missing, ", ")))
		}
		if len(orders) > 1 || len(products) > 1 {
			return nil, shared.NewValidationError("yahoo ingestion takes exactly one YahooOrder and one YahooProduct file")
		}
		set.Orders = orders[0]
		set.Products = products[0]

	case order.MarketplaceAmazon:
		if len(files) == 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("missing required file(s): %s", RoleAmazonOrder))
		}
		if len(files) > 1 {
			return nil, shared.NewValidationError("amazon ingestion takes exactly one file")
		}
		set.Orders = files[0]

	default:
		return nil, shared.NewValidationError(fmt.Sprintf("unsupported marketplace %q", marketplace))
	}

	return set, nil
}

// ReadTable parses content in the given format. Text formats are decoded with enc first.
func ReadTable(content []byte, format Format, enc Encoding) (*Table, error) {
	if format == FormatSpreadsheet {
		return ReadSpreadsheet(content)
	}
	parser, err := NewCSVParser(content, WithDelimiter(format.Delimiter()), WithEncoding(enc))
	if err != nil {
		return nil, err
	}
	return parser.ReadTable()
}
