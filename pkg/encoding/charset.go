// Package encoding converts text from legacy code pages to UTF-8. Older
// exporters write OBJ and MTL files with object, material and texture
// names in the system code page rather than UTF-8.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DefaultCharset is used for input that is not valid UTF-8.
const DefaultCharset = "windows-1252"

// ErrUnknownCharset is returned by Lookup.
var ErrUnknownCharset = errors.New("unknown charset")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var charsets = map[string]xenc.Encoding{
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1251": charmap.Windows1251,
	"euc-kr":       korean.EUCKR,
	"shift_jis":    japanese.ShiftJIS,
	"gbk":          simplifiedchinese.GBK,
}

// Charsets returns the supported charset names, sorted.
func Charsets() []string {
	names := make([]string, 0, len(charsets))
	for name := range charsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the decoder set for a charset name. Names are matched
// case-insensitively.
func Lookup(name string) (xenc.Encoding, error) {
	enc, ok := charsets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}

// ToUTF8 returns data as UTF-8. Valid UTF-8 is returned unchanged apart
// from a leading byte order mark; anything else is decoded with fallback.
func ToUTF8(data []byte, fallback xenc.Encoding) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) || fallback == nil {
		return data, nil
	}
	out, _, err := transform.Bytes(fallback.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding text: %w", err)
	}
	return out, nil
}
