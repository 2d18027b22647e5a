package extract

import (
	"bytes"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodePlain strips a UTF-8 byte order mark and replaces invalid sequences
// with U+FFFD.
func decodePlain(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}
	return string(bytes.ToValidUTF8(content, []byte("�"))), nil
}
