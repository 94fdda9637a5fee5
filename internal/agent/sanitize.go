package agent

import (
	"regexp"
	"strings"

	"github.com/paisapal/paisapal-go/internal/chat"
)

// Sanitization strips structural markup from model output before display but
// keeps its semantics as structured spans: bold runs, bullet and numbered
// lines, and links stay individually renderable, with URLs still actionable.

var (
	numberedRe = regexp.MustCompile(`^\d+[.)]\s+`)
	// markdown link | bold run | bare URL, in one pass over the line
	inlineRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)|\*\*([^*]+)\*\*|https?://[^\s<>()"']+`)
)

var boilerplatePrefixes = []string{"final answer:", "answer:", "response:"}

// sanitize converts raw model text into a display string plus spans.
func sanitize(raw string) (string, []chat.Span) {
	text := strings.TrimSpace(raw)
	lowered := strings.ToLower(text)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lowered, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	var spans []chat.Span
	var display []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "• "):
			item := trimmed
			for _, marker := range []string{"- ", "* ", "• "} {
				if strings.HasPrefix(trimmed, marker) {
					item = strings.TrimSpace(trimmed[len(marker):])
					break
				}
			}
			item = stripMarkers(item)
			spans = append(spans, chat.Span{Kind: chat.SpanBullet, Text: item})
			display = append(display, "• "+item)
		case numberedRe.MatchString(trimmed):
			item := stripMarkers(trimmed)
			spans = append(spans, chat.Span{Kind: chat.SpanNumbered, Text: item})
			display = append(display, item)
		default:
			lineSpans := inlineSpans(trimmed)
			spans = append(spans, lineSpans...)
			var b strings.Builder
			for _, sp := range lineSpans {
				b.WriteString(sp.Text)
			}
			display = append(display, b.String())
		}
	}
	return strings.Join(display, "\n"), spans
}

// inlineSpans splits one line into plain/bold/link spans.
func inlineSpans(line string) []chat.Span {
	var spans []chat.Span
	last := 0
	for _, m := range inlineRe.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			if t := stripMarkers(line[last:m[0]]); t != "" {
				spans = append(spans, chat.Span{Kind: chat.SpanPlain, Text: t})
			}
		}
		switch {
		case m[2] >= 0: // [label](url)
			spans = append(spans, chat.Span{Kind: chat.SpanLink, Text: line[m[2]:m[3]], URL: line[m[4]:m[5]]})
		case m[6] >= 0: // **bold**
			spans = append(spans, chat.Span{Kind: chat.SpanBold, Text: line[m[6]:m[7]]})
		default: // bare URL
			url := line[m[0]:m[1]]
			spans = append(spans, chat.Span{Kind: chat.SpanLink, Text: url, URL: url})
		}
		last = m[1]
	}
	if last < len(line) {
		if t := stripMarkers(line[last:]); t != "" {
			spans = append(spans, chat.Span{Kind: chat.SpanPlain, Text: t})
		}
	}
	return spans
}

var markerReplacer = strings.NewReplacer("**", "", "__", "", "`", "", "*", "")

// stripMarkers removes leftover emphasis markers from a text segment.
func stripMarkers(s string) string {
	return markerReplacer.Replace(s)
}
