package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is a function layer whose argument list holds the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

// detectFunctionCall reports the function layer whose argument list
// contains cursor, and the index of the argument being typed.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))
	prefix := input[:cursor]

	bar := strings.LastIndexByte(prefix, '|')
	if bar < 0 {
		return functionCall{}
	}

	seg := prefix[bar+1:]

	open := strings.IndexByte(seg, '(')
	if open < 0 || strings.IndexByte(seg[open:], ')') >= 0 {
		return functionCall{}
	}

	name := strings.TrimSpace(seg[:open])
	if name == "" {
		return functionCall{}
	}

	args := seg[open+1:]
	index := strings.Count(args, ",")

	if parts, err := split(args, ','); err == nil {
		index = len(parts) - 1
	}

	return functionCall{name: name, argIndex: index, inCall: true}
}

// renderSignatureHint renders name(params...) with the parameter at
// current highlighted.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == current {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
