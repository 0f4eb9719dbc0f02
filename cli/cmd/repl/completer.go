package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "functions", "maps", "escape", "reload", "edit", "clear", "quit",
}

// isWordBoundary reports whether r delimits words for completion.
// Identifiers may contain '/', '-', and '.', so none of them are boundaries.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '|', '(', ')', ',', '@':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// slotKind is what the word at the cursor names.
type slotKind int

const (
	slotNone     slotKind = iota // input text or a function argument
	slotFunction                 // a function layer
	slotMap                      // a map layer, after '@'
)

// slotAt classifies the word starting at wordStart.
func slotAt(input string, wordStart int) slotKind {
	prefix := input[:wordStart]

	bar := strings.LastIndexByte(prefix, '|')
	if bar < 0 {
		return slotNone
	}

	seg := prefix[bar+1:]

	switch {
	case strings.Count(seg, "(") > strings.Count(seg, ")"):
		return slotNone
	case strings.HasSuffix(strings.TrimSpace(seg), "@"):
		return slotMap
	case strings.TrimSpace(seg) == "":
		return slotFunction
	}

	return slotNone
}

// identifiers holds the completion candidates of each slot.
type identifiers struct {
	functions []string
	maps      []string
}

func (ids identifiers) of(kind slotKind) []string {
	switch kind {
	case slotFunction:
		return ids.functions
	case slotMap:
		return ids.maps
	}

	return nil
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, and the word boundaries. An empty word in a
// layer slot matches every candidate.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	if m.mode == modeCtrl {
		if word == "" || strings.ContainsAny(input[:wordStart], " \t") {
			return nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		candidates = m.ids.of(slotAt(input, wordStart))
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit width. The selected candidate (when tabbing) uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
