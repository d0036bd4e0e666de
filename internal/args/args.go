// Package args splits command text into arguments, one at a time.
//
// An argument is either a single word or a run of text wrapped in a
// recognised pair of quote characters. Splitting is a pure function of the
// input, so callers can peek ahead any number of arguments and later consume
// them without the two views ever disagreeing.
package args

import (
	"strings"
	"unicode"
)

// quotePair is one accepted open/close quote combination. Order matters: the
// first pair whose opener prefixes the input wins.
type quotePair struct {
	open  string
	close string
}

var quotePairs = []quotePair{
	{`"`, `"`},
	{`'`, `'`},
	{"«", "»"},
	{"「", "」"},
	{"“", "”"}, // curly double quotes
	{"‘", "’"}, // curly single quotes
}

// Placeholder runes from a private use area, substituted for escape sequences
// while scanning so the escaped characters cannot terminate a token.
const (
	bsEscape = "" // stands for an escaped backslash
	ecEscape = "" // stands for an escaped close-quote character
)

// Next returns the first argument in content and the unconsumed text after
// it. The returned rest is left-stripped of whitespace, so repeated calls
// compose without manual trimming. ok is false when content holds no further
// arguments.
//
// Quote marks around an argument are stripped. A quote mark inside a word
// does not separate arguments. When only the opening quote is present, the
// whole rest of the input becomes the argument. A backslash escapes a quote
// character, and a doubled backslash is a literal backslash.
func Next(content string) (token, rest string, ok bool) {
	s := strings.TrimLeftFunc(content, unicode.IsSpace)
	if s == "" {
		return "", "", false
	}
	s = strings.ReplaceAll(s, `\\`, bsEscape)

	var close string
	body := s
	for _, p := range quotePairs {
		if strings.HasPrefix(s, p.open) {
			close = p.close
			body = strings.ReplaceAll(s[len(p.open):], `\`+p.close, ecEscape)
			break
		}
		if strings.HasPrefix(s, `\`+p.open) {
			// Escaped opener: the quote character is literal and the
			// argument is scanned as a plain word.
			body = s[1:]
			break
		}
	}

	if close == "" {
		idx := strings.IndexFunc(body, unicode.IsSpace)
		if idx < 0 {
			return restoreToken(body, ""), "", true
		}
		token = restoreToken(body[:idx], "")
		rest = strings.TrimLeftFunc(restoreText(body[idx:], ""), unicode.IsSpace)
		return token, rest, true
	}

	// A close character only terminates the argument when followed by
	// whitespace or the end of input; any other occurrence is part of the
	// argument body.
	for from := 0; ; {
		i := strings.Index(body[from:], close)
		if i < 0 {
			break
		}
		i += from
		after := i + len(close)
		if after == len(body) || startsWithSpace(body[after:]) {
			token = restoreToken(body[:i], close)
			rest = strings.TrimLeftFunc(restoreText(body[after:], close), unicode.IsSpace)
			return token, rest, true
		}
		from = after
	}

	// Unterminated quote: everything after the opener is the argument.
	return restoreToken(body, close), "", true
}

// Peek returns up to limit leading arguments of content without any notion
// of consumption. Fewer than limit entries are returned when the input runs
// out of arguments.
func Peek(content string, limit int) []string {
	var out []string
	for len(out) < limit {
		token, rest, ok := Next(content)
		if !ok {
			break
		}
		out = append(out, token)
		content = rest
	}
	return out
}

// restoreToken resolves placeholders into the characters they stand for:
// an escaped close quote becomes the bare quote character inside the token.
func restoreToken(s, close string) string {
	if close != "" {
		s = strings.ReplaceAll(s, ecEscape, close)
	}
	return strings.ReplaceAll(s, bsEscape, `\`)
}

// restoreText resolves placeholders back into their original escape
// sequences, so the remainder is byte-for-byte a suffix of the input and can
// be scanned again.
func restoreText(s, close string) string {
	if close != "" {
		s = strings.ReplaceAll(s, ecEscape, `\`+close)
	}
	return strings.ReplaceAll(s, bsEscape, `\\`)
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}
