// Package textdecode converts scanned files to UTF-8 before matching.
//
// UTF-8 input and input with a UTF-16 byte order mark are handled directly.
// Anything else goes through charset detection (saintfish/chardet) and the
// matching golang.org/x/text decoder.
package textdecode

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UTF8 is the charset name reported for input passed through unchanged.
const UTF8 = "UTF-8"

// ErrUnsupportedCharset is returned by DecodeAs for unknown charset names.
var ErrUnsupportedCharset = errors.New("unsupported charset")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode returns raw as UTF-8 along with the charset it was decoded from.
// Input whose charset cannot be determined or has no decoder is returned
// unchanged.
func Decode(raw []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return raw[len(bomUTF8):], UTF8, nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		out, err := DecodeAs(raw, "UTF-16LE")
		return out, "UTF-16LE", err
	case bytes.HasPrefix(raw, bomUTF16BE):
		out, err := DecodeAs(raw, "UTF-16BE")
		return out, "UTF-16BE", err
	case utf8.Valid(raw):
		return raw, UTF8, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return raw, "", nil
	}
	out, err := DecodeAs(raw, result.Charset)
	if errors.Is(err, ErrUnsupportedCharset) {
		return raw, result.Charset, nil
	}
	return out, result.Charset, err
}

// DecodeAs converts raw from the named charset to UTF-8. Names are matched
// case-insensitively and follow chardet's spelling.
func DecodeAs(raw []byte, charset string) ([]byte, error) {
	enc := lookup(charset)
	if enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, charset)
	}
	if enc == encoding.Nop {
		return raw, nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", charset, err)
	}
	return out, nil
}

func lookup(charset string) encoding.Encoding {
	switch strings.ToLower(charset) {
	case "utf-8", "ascii", "us-ascii":
		return encoding.Nop
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "gbk", "gb2312", "gb-18030", "gb18030":
		return simplifiedchinese.GB18030
	case "big5":
		return traditionalchinese.Big5
	case "shift_jis":
		return japanese.ShiftJIS
	case "euc-jp":
		return japanese.EUCJP
	case "iso-2022-jp":
		return japanese.ISO2022JP
	case "euc-kr":
		return korean.EUCKR
	case "koi8-r":
		return charmap.KOI8R
	case "iso-8859-1":
		return charmap.ISO8859_1
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "iso-8859-6":
		return charmap.ISO8859_6
	case "iso-8859-7":
		return charmap.ISO8859_7
	case "iso-8859-8", "iso-8859-8-i":
		return charmap.ISO8859_8
	case "iso-8859-9":
		return charmap.ISO8859_9
	case "windows-1250":
		return charmap.Windows1250
	case "windows-1251":
		return charmap.Windows1251
	case "windows-1252":
		return charmap.Windows1252
	case "windows-1253":
		return charmap.Windows1253
	case "windows-1254":
		return charmap.Windows1254
	case "windows-1255":
		return charmap.Windows1255
	case "windows-1256":
		return charmap.Windows1256
	}
	return nil
}
