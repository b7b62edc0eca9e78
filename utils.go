package stxtconverter

import (
	"errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// check if a byte is a letter to check if it is part of a control word
func ByteIsAsciiLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func ByteIsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func ByteIsHexDigit(b byte) bool {
	return ByteIsDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// DefaultEncoding is the code page of documents that do not declare one.
const DefaultEncoding = "CP1252"

var rtfEncodeCodePageMap = map[string]string{
	"ansi": "CP1252",
	"mac":  "MAC",
	"pc":   "CP437",
	"pca":  "CP850",
	"437":  "CP437",    // United States IBM
	"708":  "ASMO-708", // also [ISO-8859-6][ARABIC] Arabic
	"819":  "CP819",    // Windows 3.1 (US and Western Europe)
	"850":  "CP850",    // IBM multilingual
	"852":  "CP852",    // Eastern European
	"860":  "CP860",    // Portuguese
	"862":  "CP862",    // Hebrew
	"863":  "CP863",    // French Canadian
	"865":  "CP865",    // Norwegian
	"866":  "CP866",    // Soviet Union
	"874":  "CP874",    // Thai
	"932":  "CP932",    // Japanese
	"936":  "CP936",    // Simplified Chinese
	"949":  "CP949",    // Korean
	"950":  "CP950",    // Traditional Chinese
	"1250": "CP1250",   // Windows 3.1 (Eastern European)
	"1251": "CP1251",   // Windows 3.1 (Cyrillic)
	"1252": "CP1252",   // Western European
	"1253": "CP1253",   // Greek
	"1254": "CP1254",   // Turkish
	"1255": "CP1255",   // Hebrew
	"1256": "CP1256",   // Arabic
	"1257": "CP1257",   // Baltic
	"1258": "CP1258",   // Vietnamese
	"1361": "CP1361",   // Johab

	"65001": "UTF-8",
}

func GetEncodingFromCodepage(code string) (string, error) {
	if val, ok := rtfEncodeCodePageMap[code]; ok {
		return val, nil
	}

	return "", errors.New("encoding code page not found")
}

var rtfEncodings = map[string]encoding.Encoding{
	"MAC":      charmap.Macintosh,
	"CP437":    charmap.CodePage437,
	"ASMO-708": charmap.ISO8859_6,
	"CP819":    charmap.ISO8859_1,
	"CP850":    charmap.CodePage850,
	"CP852":    charmap.CodePage852,
	"CP860":    charmap.CodePage860,
	"CP862":    charmap.CodePage862,
	"CP863":    charmap.CodePage863,
	"CP865":    charmap.CodePage865,
	"CP866":    charmap.CodePage866,
	"CP874":    charmap.Windows874,
	"CP932":    japanese.ShiftJIS,
	"CP936":    simplifiedchinese.GBK,
	"CP949":    korean.EUCKR,
	"CP950":    traditionalchinese.Big5,
	"CP1250":   charmap.Windows1250,
	"CP1251":   charmap.Windows1251,
	"CP1252":   charmap.Windows1252,
	"CP1253":   charmap.Windows1253,
	"CP1254":   charmap.Windows1254,
	"CP1255":   charmap.Windows1255,
	"CP1256":   charmap.Windows1256,
	"CP1257":   charmap.Windows1257,
	"CP1258":   charmap.Windows1258,
	"CP1361":   korean.EUCKR,
	"UTF-8":    encoding.Nop,
}

// GetDecoder returns a decoder to UTF-8 for an encoding name of the code page
// table; unknown names fall back to the default ANSI code page.
func GetDecoder(srcEncoding string) *encoding.Decoder {
	if enc, ok := rtfEncodings[srcEncoding]; ok {
		return enc.NewDecoder()
	}
	return charmap.Windows1252.NewDecoder()
}

func ConvertToUtf8(b []byte, srcEncoding string) ([]byte, error) {
	return GetDecoder(srcEncoding).Bytes(b)
}
