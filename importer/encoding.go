package importer

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeExport returns the export as UTF-8 text.
// Old exports were saved from Excel with the Arabic Windows code page, so
// anything that is not valid UTF-8 is decoded as Windows-1256.
func DecodeExport(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, _, err := transform.Bytes(charmap.Windows1256.NewDecoder(), data)
	if err != nil || !utf8.Valid(decoded) {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

// ReadExportFile reads and decodes the export and splits it into lines.
func ReadExportFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}
	return SplitLines(DecodeExport(data)), nil
}

// SplitLines splits text on LF, CRLF and lone CR.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

var digitFolder = runes.Map(func(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r == '٫':
		return '.'
	case r == '٬':
		return ','
	}
	return r
})

// NormalizeDigits folds Arabic-Indic digits and separators to ASCII.
func NormalizeDigits(s string) string {
	out, _, err := transform.String(digitFolder, s)
	if err != nil {
		return s
	}
	return out
}
