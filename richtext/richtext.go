// Package richtext renders structured rich text (paragraphs, headings, list
// items and preformatted blocks with strong/em/hyperlink spans) to HTML as a
// templ component.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/blog"
)

// RichText returns a templ.Component that renders blocks as HTML.
func RichText(blocks []blog.Paragraph) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, blocks)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of blocks to buf. Consecutive list
// items are grouped into a single list.
func Render(buf *bytes.Buffer, blocks []blog.Paragraph) {
	list := ""
	flushList := func() {
		if list != "" {
			buf.WriteString("</" + list + ">")
			list = ""
		}
	}

	for _, b := range blocks {
		switch b.Type {
		case "list-item", "o-list-item":
			want := "ul"
			if b.Type == "o-list-item" {
				want = "ol"
			}
			if list != want {
				flushList()
				buf.WriteString("<" + want + ">")
				list = want
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</li>")
		case "heading1", "heading2", "heading3", "heading4", "heading5", "heading6":
			flushList()
			tag := "h" + b.Type[len("heading"):]
			buf.WriteString("<" + tag + ">")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</" + tag + ">")
		case "preformatted":
			flushList()
			buf.WriteString("<pre class=\"code-block\"><code>")
			buf.WriteString(html.EscapeString(b.Text))
			buf.WriteString("</code></pre>")
		default:
			flushList()
			buf.WriteString("<p>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</p>")
		}
	}
	flushList()
}

// FormatSpans escapes text and wraps the ranges covered by spans in
// <strong>, <em> or <a>. Span offsets count UTF-16 code units, as the content
// API reports them. Overlapping spans are split so the output stays well
// formed. Newlines become <br/>.
func FormatSpans(text string, spans []blog.Span) string {
	runes := []rune(text)
	offsets := runeOffsets(runes)
	valid := make([]blog.Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End >= len(offsets) {
			continue
		}
		s.Start, s.End = offsets[s.Start], offsets[s.End]
		if s.Start >= s.End || openTag(s) == "" {
			continue
		}
		valid = append(valid, s)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	var b strings.Builder
	var stack []blog.Span
	next := 0
	for i := 0; i <= len(runes); i++ {
		// close spans ending here, reopening anything opened after them
		for k := len(stack) - 1; k >= 0; k-- {
			if stack[k].End != i {
				continue
			}
			for j := len(stack) - 1; j >= k; j-- {
				b.WriteString(closeTag(stack[j]))
			}
			reopen := append([]blog.Span(nil), stack[k+1:]...)
			stack = stack[:k]
			for _, s := range reopen {
				b.WriteString(openTag(s))
				stack = append(stack, s)
			}
		}
		for next < len(valid) && valid[next].Start == i {
			b.WriteString(openTag(valid[next]))
			stack = append(stack, valid[next])
			next++
		}
		if i == len(runes) {
			break
		}
		if runes[i] == '\n' {
			b.WriteString("<br/>")
			continue
		}
		b.WriteString(html.EscapeString(string(runes[i])))
	}
	return b.String()
}

// runeOffsets maps each UTF-16 offset into runes, up to and including the
// end, to a rune index. An offset inside a surrogate pair maps past the pair.
func runeOffsets(runes []rune) []int {
	offsets := make([]int, 0, len(runes)+1)
	for i, r := range runes {
		offsets = append(offsets, i)
		if utf16.RuneLen(r) == 2 {
			offsets = append(offsets, i+1)
		}
	}
	return append(offsets, len(runes))
}

func openTag(s blog.Span) string {
	switch s.Type {
	case "strong":
		return "<strong>"
	case "em":
		return "<em>"
	case "hyperlink":
		href := SafeURL(s.URL)
		if href == "" {
			return ""
		}
		attrs := `class="underline"`
		if strings.HasPrefix(href, "http") {
			attrs += ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `" ` + attrs + `>`
	}
	return ""
}

func closeTag(s blog.Span) string {
	switch s.Type {
	case "strong":
		return "</strong>"
	case "em":
		return "</em>"
	case "hyperlink":
		return "</a>"
	}
	return ""
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
