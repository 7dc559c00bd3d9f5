// Package markdown implements a heading-only Markdown to HTML renderer.
//
// Only ATX headings of level 1 to 3 are recognized, plus a single trailing
// newline which becomes a line break. Everything else is copied verbatim.
package markdown

import (
	"html"
	"strconv"
	"strings"
)

// maxLevel is the deepest heading level recognized.
const maxLevel = 3

// lineBreak replaces a single trailing newline.
const lineBreak = "<br />"

// Render converts heading lines to HTML headings.
//
// The result is raw markup: text outside the injected heading tags is not
// escaped, so callers must only feed it trusted input or sanitize the output.
func Render(source string) string {
	return render(source, func(s string) string { return s })
}

// RenderEscaped is Render with all source text HTML-escaped first, so the
// only markup in the output is the renderer's own.
func RenderEscaped(source string) string {
	return render(source, html.EscapeString)
}

func render(source string, text func(string) string) string {
	if source == "" {
		return ""
	}
	body, trailing := source, false
	if strings.HasSuffix(source, "\n") && !strings.HasSuffix(source, "\n\n") {
		body, trailing = source[:len(source)-1], true
	}

	var sb strings.Builder
	sb.Grow(len(source) + 16)
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeLine(&sb, line, text)
	}
	if trailing {
		sb.WriteString(lineBreak)
	}
	return sb.String()
}

// writeLine writes one line, wrapped in a heading when it starts with a
// marker of 1 to 3 '#' followed by a space.
func writeLine(sb *strings.Builder, line string, text func(string) string) {
	level := headingLevel(line)
	if level == 0 {
		sb.WriteString(text(line))
		return
	}
	content, cr := line[level+1:], ""
	if strings.HasSuffix(content, "\r") {
		content, cr = content[:len(content)-1], "\r"
	}
	tag := "h" + strconv.Itoa(level)
	sb.WriteString("<" + tag + ">")
	sb.WriteString(text(content))
	sb.WriteString("</" + tag + ">")
	sb.WriteString(cr)
}

// headingLevel returns the heading level of line, or 0 when it is not a
// heading. The marker must be followed by a space.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > maxLevel || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}
