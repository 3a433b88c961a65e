package colors

import (
	"fmt"
	"io"
	"strings"
)

func (c COLOR) Fprintf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, string(c)+format+string(RESET), args...)
}

func (c COLOR) Fprintln(w io.Writer, args ...any) {
	fmt.Fprint(w, string(c), fmt.Sprintln(args...), string(RESET))
}

func (c COLOR) Fprint(w io.Writer, args ...any) {
	fmt.Fprint(w, c.Sprint(args...))
}

func (c COLOR) Sprintf(format string, args ...any) string {
	return c.Sprint(fmt.Sprintf(format, args...))
}

func (c COLOR) Sprint(args ...any) string {
	return string(c) + fmt.Sprint(args...) + string(RESET)
}

// StripANSI drops every CSI escape sequence from s.
func StripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			// skip parameters up to the final letter
			for i += 2; i < len(s) && !isFinalByte(s[i]); i++ {
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isFinalByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

var htmlSpan = map[COLOR]string{
	RED:         "color: #ef4444",
	GREEN:       "color: #10b981",
	YELLOW:      "color: #f59e0b",
	BLUE:        "color: #3b82f6",
	PURPLE:      "color: #c678dd",
	CYAN:        "color: #56b6c2",
	GREY:        "color: #5c6370",
	ORANGE:      "color: #ff8700",
	BOLD:        "font-weight: bold",
	BOLD_RED:    "color: #ef4444; font-weight: bold",
	BOLD_GREEN:  "color: #10b981; font-weight: bold",
	BOLD_YELLOW: "color: #f59e0b; font-weight: bold",
	BOLD_CYAN:   "color: #56b6c2; font-weight: bold",
}

var htmlReplacer = func() *strings.Replacer {
	pairs := []string{
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\n", "<br>",
		"  ", "&nbsp;&nbsp;",
		string(RESET), "</span>",
	}
	for c, style := range htmlSpan {
		pairs = append(pairs, string(c), `<span style="`+style+`">`)
	}
	return strings.NewReplacer(pairs...)
}()

// ConvertANSIToHTML escapes text for HTML and turns color codes into spans.
func ConvertANSIToHTML(text string) string {
	return htmlReplacer.Replace(text)
}
