// Package sniffer inspects raw metadata tables before decoding: it strips the
// byte order mark, transcodes Latin-1 exports to UTF-8, picks the delimiter
// and fingerprints header rows so a run can tell which layout it consumed.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var ErrEmptyFile = errors.New("file is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalize returns data as UTF-8 text without a leading BOM. Input that is
// not valid UTF-8 is assumed to be Windows-1252, which is what spreadsheet
// tools save "CSV" as on most locales.
func Normalize(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// DetectDelimiter picks the delimiter that occurs most often in the first
// non-blank line. Comma wins when nothing else is present.
func DetectDelimiter(data []byte) rune {
	line := firstLine(data)
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if count := strings.Count(line, string(d)); count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

func firstLine(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line != "" {
			return line
		}
	}
	return ""
}

// Fingerprint hashes a header row. Headers are lower-cased and reduced to
// letters and digits, so cosmetic edits (spacing, punctuation) keep the same
// fingerprint while added, removed or reordered columns change it.
func Fingerprint(headers []string) string {
	normalized := make([]string, 0, len(headers))
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
