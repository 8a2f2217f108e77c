package csvimport

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding selects how raw file bytes are turned into UTF-8 text
type Encoding int

const (
	// EncodingAuto keeps valid UTF-8 and decodes anything else as Shift-JIS
	EncodingAuto Encoding = iota
	EncodingUTF8
	EncodingShiftJIS
)

// String returns the encoding name
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingShiftJIS:
		return "shift-jis"
	}
	return "auto"
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts data to UTF-8 using enc. A UTF-8 BOM is always stripped.
func Decode(data []byte, enc Encoding) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	switch enc {
	case EncodingUTF8:
		if !utf8.Valid(data) {
			return nil, ErrInvalidEncoding
		}
		return data, nil
	case EncodingShiftJIS:
		return decodeShiftJIS(data)
	default:
		if utf8.Valid(data) {
			return data, nil
		}
		return decodeShiftJIS(data)
	}
}

func decodeShiftJIS(data []byte) ([]byte, error) {
	r := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: shift-jis: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}
