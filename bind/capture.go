package bind

import (
	"log/slog"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CaptureGroup is the name of the submatch that delimits a fragment.
const CaptureGroup = "capture"

// DefaultPatternCacheSize bounds the number of compiled patterns kept.
const DefaultPatternCacheSize = 256

type compiled struct {
	re  *regexp.Regexp
	err error
}

// patterns compiles regular expressions and remembers the results.
type patterns struct {
	cache *lru.Cache[string, compiled]
}

func newPatterns(size int) *patterns {
	if size <= 0 {
		size = DefaultPatternCacheSize
	}

	cache, err := lru.New[string, compiled](size)
	if err != nil {
		panic(err) // only for size <= 0
	}

	return &patterns{cache: cache}
}

func (p *patterns) compile(expr string) (*regexp.Regexp, error) {
	if c, ok := p.cache.Get(expr); ok {
		return c.re, c.err
	}

	re, err := regexp.Compile(expr)
	p.cache.Add(expr, compiled{re: re, err: err})

	return re, err
}

// capture compiles the matcher of a capture.
func (p *patterns) capture(expr string) (*regexp.Regexp, error) {
	re, err := p.compile(expr)
	if err != nil {
		return nil, ErrBadCapture.Wrap(err).With(slog.String("pattern", expr))
	}

	return re, nil
}

// Extract returns the fragments of text matched by re, in match order.
//
// Each non-overlapping match contributes one fragment: the submatch named
// "capture" if re has one, else the first submatch if re has any groups,
// else the whole match. A submatch that did not participate in a match
// contributes an empty fragment.
func Extract(re *regexp.Regexp, text string) []string {
	group := 0

	if i := re.SubexpIndex(CaptureGroup); i > 0 {
		group = i
	} else if re.NumSubexp() > 0 {
		group = 1
	}

	matches := re.FindAllStringSubmatchIndex(text, -1)
	frags := make([]string, 0, len(matches))

	for _, m := range matches {
		lo, hi := m[2*group], m[2*group+1]
		if lo < 0 {
			frags = append(frags, "")

			continue
		}

		frags = append(frags, text[lo:hi])
	}

	return frags
}
