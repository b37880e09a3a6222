// Package textenc turns Markdown bytes of unknown encoding into UTF-8.
//
// Byte order marks win; valid UTF-8 is kept as is; anything else goes
// through chardet and the candidate decodings are scored, keeping the one
// that reads most like text.
package textenc

import (
	"bytes"
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
)

// Charset names reported by Decode.
const (
	UTF8    = "UTF-8"
	UTF8BOM = "UTF-8-BOM"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
	Unknown = "unknown"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode returns data as UTF-8 text plus the charset it was read as.
// Undecodable input falls back to UTF-8 with invalid sequences replaced
// by U+FFFD and charset Unknown.
func Decode(data []byte) (text, charset string) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), UTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		if s, ok := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data); ok {
			return s, UTF16LE
		}
	case bytes.HasPrefix(data, bomUTF16BE):
		if s, ok := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data); ok {
			return s, UTF16BE
		}
	}

	if utf8.Valid(data) {
		return string(data), UTF8
	}

	if s, cs, ok := detect(data); ok {
		return s, cs
	}
	return strings.ToValidUTF8(string(data), "�"), Unknown
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// detect asks chardet for every plausible charset and keeps the decoding
// with the best score.
func detect(data []byte) (string, string, bool) {
	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil || len(results) == 0 {
		return "", "", false
	}

	bestScore := -1 << 31
	var bestText, bestCharset string
	for _, r := range results {
		enc := Lookup(r.Charset)
		if enc == nil {
			continue
		}
		s, ok := decodeWith(enc, data)
		if !ok {
			continue
		}
		if score := Score(s, r.Confidence); score > bestScore {
			bestScore, bestText, bestCharset = score, s, r.Charset
		}
	}
	if bestCharset == "" {
		return "", "", false
	}
	return bestText, bestCharset, true
}

// Score rates how coherent a decoded text looks, starting from the
// detector confidence. Replacement runes, C0/C1 controls and box-drawing
// noise cost points; letters earn them.
func Score(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case r >= 0x80 && r <= 0x9F:
			score -= 5
		case r >= 0x2500 && r <= 0x259F:
			score -= 2
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			score++
		case r >= 0xC0 && r <= 0x24F: // accented Latin
			score += 2
		case r >= 0x0400 && r <= 0x04FF: // Cyrillic
			score += 2
		case r >= 0x3040 && r <= 0x30FF, r >= 0x4E00 && r <= 0x9FFF:
			score += 2
		}
	}
	return score
}

// Lookup maps a charset label (as chardet or an HTTP header spells it)
// to an x/text encoding. Unknown labels return nil.
func Lookup(charset string) encoding.Encoding {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(charset))
	switch key {
	case "utf8", "utf8bom", "ascii", "usascii":
		return unicode.UTF8
	case "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso88591", "latin1":
		return charmap.ISO8859_1
	case "iso88592":
		return charmap.ISO8859_2
	case "iso88595":
		return charmap.ISO8859_5
	case "iso88597":
		return charmap.ISO8859_7
	case "iso88599":
		return charmap.ISO8859_9
	case "iso885915":
		return charmap.ISO8859_15
	case "windows1250", "cp1250":
		return charmap.Windows1250
	case "windows1251", "cp1251":
		return charmap.Windows1251
	case "windows1252", "cp1252":
		return charmap.Windows1252
	case "windows1253", "cp1253":
		return charmap.Windows1253
	case "windows1254", "cp1254":
		return charmap.Windows1254
	case "koi8r":
		return charmap.KOI8R
	case "ibm850", "cp850":
		return charmap.CodePage850
	case "shiftjis", "sjis", "cp932", "windows31j":
		return japanese.ShiftJIS
	case "eucjp":
		return japanese.EUCJP
	case "iso2022jp":
		return japanese.ISO2022JP
	case "euckr", "cp949":
		return korean.EUCKR
	case "gb2312", "gbk", "cp936", "gb18030":
		return simplifiedchinese.GBK
	case "big5", "cp950":
		return traditionalchinese.Big5
	}
	return nil
}
