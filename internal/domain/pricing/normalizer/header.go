// Package normalizer turns free-text price column headers into a supplier,
// a sales channel and a validity month, preferring curated aliases.
// header.go holds the heuristic header parser used when no alias applies.
package normalizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ChannelPattern maps a header fragment to a channel label.
type ChannelPattern struct {
	Label   string
	Pattern *regexp.Regexp
}

// HeaderParser extracts a validity month, supplier and channel from headers.
// The month vocabulary, noise words and channel patterns are data; channel
// patterns are tried in order and the first that matches wins.
type HeaderParser struct {
	months   map[string]int
	dateRe   *regexp.Regexp
	monthRe  *regexp.Regexp
	noise    []*regexp.Regexp
	channels []ChannelPattern
}

var defaultMonths = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

var defaultNoiseWords = []string{"price", "concessions", "orderlist", "last purchased"}

var defaultChannels = []struct{ label, pattern string }{
	{"Direct", `\bdirect\b`},
	{"Proposition", `\b(prop|proposition)\b`},
	{"T&R", `\b(t\s*&\s*r|t\s*and\s*r|tand r|t&r)\b`},
	{"Short-dated", `\b(short[-\s]?dated|shortdated|s/d)\b`},
	{"Spot", `\b(spot\s*buy|spot-buy|spotbuy|spot)\b`},
	{"Promo", `\b(promo|promotion|promotional)\b`},
	{"Tender", `\b(tender|tendered)\b`},
}

// NewHeaderParser creates a parser with the built-in month, noise-word and
// channel vocabulary.
func NewHeaderParser() *HeaderParser {
	p := &HeaderParser{months: make(map[string]int, len(defaultMonths))}
	for token, month := range defaultMonths {
		p.months[token] = month
	}
	p.compileDate()

	for _, word := range defaultNoiseWords {
		p.noise = append(p.noise, wordPattern(word))
	}
	for _, c := range defaultChannels {
		if err := p.AddChannel(c.label, c.pattern); err != nil {
			panic(err)
		}
	}
	return p
}

// AddChannel appends a channel pattern. Matching is case-insensitive.
func (p *HeaderParser) AddChannel(label, pattern string) error {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return fmt.Errorf("channel %s: %w", label, err)
	}
	p.channels = append(p.channels, ChannelPattern{Label: label, Pattern: re})
	return nil
}

// AddMonth adds a month spelling, e.g. "sept" for 9.
func (p *HeaderParser) AddMonth(token string, month int) error {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" || month < 1 || month > 12 {
		return fmt.Errorf("invalid month %q=%d", token, month)
	}
	p.months[token] = month
	p.compileDate()
	return nil
}

// compileDate builds the month/year pattern and the bare month-word pattern.
// Longer spellings come first so "sept2023" matches "sept" rather than "sep"
// plus a stray "t". A dated month may follow letters directly ("PhoenixJan24");
// a month without a year must stand as its own word.
func (p *HeaderParser) compileDate() {
	tokens := make([]string, 0, len(p.months))
	for token := range p.months {
		tokens = append(tokens, regexp.QuoteMeta(token))
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	alternation := strings.Join(tokens, "|")
	p.dateRe = regexp.MustCompile(`(?i)(` + alternation + `)\D{0,3}(\d{2,4})`)
	p.monthRe = regexp.MustCompile(`(?i)[-–—_/\s]*\b(?:` + alternation + `)\b`)
}

func wordPattern(word string) *regexp.Regexp {
	parts := strings.Fields(regexp.QuoteMeta(word))
	return regexp.MustCompile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}

// dateMatch locates the first month/year token in header.
type dateMatch struct {
	start, end int // byte span of the month and year
	month      int
	year       int
}

func (p *HeaderParser) findDate(header string) (dateMatch, bool) {
	loc := p.dateRe.FindStringSubmatchIndex(header)
	if loc == nil {
		return dateMatch{}, false
	}
	month, ok := p.months[strings.ToLower(header[loc[2]:loc[3]])]
	if !ok {
		return dateMatch{}, false
	}
	year, err := strconv.Atoi(header[loc[4]:loc[5]])
	if err != nil {
		return dateMatch{}, false
	}
	if year < 100 {
		year += 2000
	}
	return dateMatch{start: loc[2], end: loc[5], month: month, year: year}, true
}

// ValidFrom returns the first-of-month date named in header as YYYY-MM-01,
// or "" when the header carries no month followed by a year.
func (p *HeaderParser) ValidFrom(header string) string {
	m, ok := p.findDate(header)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-01", m.year, m.month)
}

// SupplierAndChannel derives a supplier and channel from the header text
// alone. Month tokens (with or without a year) and noise words are removed,
// then the first matching channel pattern sets the channel and is removed
// too. What remains, title cased, is the supplier; when nothing remains the
// trimmed header is used so the supplier is never empty.
func (p *HeaderParser) SupplierAndChannel(header string) (supplier, channel string) {
	text := strings.TrimSpace(header)
	base := p.stripMonths(text)

	for _, re := range p.noise {
		base = re.ReplaceAllString(base, " ")
	}
	for _, c := range p.channels {
		if c.Pattern.MatchString(base) {
			channel = c.Label
			base = c.Pattern.ReplaceAllString(base, " ")
			break
		}
	}

	supplier = titleCase(collapse(base))
	if supplier == "" {
		supplier = text
	}
	return supplier, channel
}

// stripMonths removes every month/year token, then every month word left
// standing on its own, each with the separators in front of it.
func (p *HeaderParser) stripMonths(s string) string {
	for {
		m, ok := p.findDate(s)
		if !ok {
			break
		}
		prefix := strings.TrimRightFunc(s[:m.start], isDateSeparator)
		s = prefix + " " + s[m.end:]
	}
	return p.monthRe.ReplaceAllString(s, " ")
}

func isDateSeparator(r rune) bool {
	switch r {
	case '-', '–', '—', '_', '/', ' ', '\t':
		return true
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
