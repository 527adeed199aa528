package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// DefaultEncodings is the candidate order used when none is configured.
var DefaultEncodings = []string{"utf-8", "ISO-8859-1", "latin1", "GBK"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Aliases resolved before falling back to the WHATWG index. The index maps
// latin1 and iso-8859-1 to windows-1252, which is not what those names
// mean to most CSV producers.
var knownEncodings = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"l1":           charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"gbk":          simplifiedchinese.GBK,
	"cp936":        simplifiedchinese.GBK,
	"gb2312":       simplifiedchinese.GBK,
	"gb18030":      simplifiedchinese.GB18030,
}

func normalizeEncodingName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

func isUTF8Name(n string) bool {
	return n == "utf-8" || n == "utf8"
}

// ValidEncoding reports whether name resolves to a codec.
func ValidEncoding(name string) bool {
	n := normalizeEncodingName(name)
	if isUTF8Name(n) {
		return true
	}
	if _, ok := knownEncodings[n]; ok {
		return true
	}
	_, err := htmlindex.Get(n)
	return err == nil
}

// decodeText converts raw bytes to UTF-8 text under the named encoding.
// It fails on byte sequences the encoding cannot represent instead of
// substituting replacement characters.
func decodeText(raw []byte, name string) (string, error) {
	n := normalizeEncodingName(name)
	if isUTF8Name(n) {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid utf-8 byte sequence at offset %d", invalidUTF8Offset(raw))
		}
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	}

	enc, ok := knownEncodings[n]
	if !ok {
		var err error
		enc, err = htmlindex.Get(n)
		if err != nil {
			return "", fmt.Errorf("unknown encoding %q", name)
		}
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("invalid %s byte sequence", name)
	}
	return string(out), nil
}

func invalidUTF8Offset(raw []byte) int {
	off := 0
	for off < len(raw) {
		r, size := utf8.DecodeRune(raw[off:])
		if r == utf8.RuneError && size <= 1 {
			return off
		}
		off += size
	}
	return off
}
