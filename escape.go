package sfx_installer

import (
	"fmt"
	"strings"
)

// heredocEscapes are the characters an unquoted bash heredoc would interpret. The
// backslash must come first, otherwise the backslashes added for the later characters
// would be escaped again.
const heredocEscapes = "\\$`"

// EscapeHeredoc prepares text for embedding in an unquoted heredoc, so that the heredoc
// writes out exactly the given text.
func EscapeHeredoc(text string) string {
	for _, c := range heredocEscapes {
		text = strings.ReplaceAll(text, string(c), `\`+string(c))
	}
	return text
}

// UnescapeHeredoc reverses EscapeHeredoc, the way bash reads an unquoted heredoc body. A
// backslash not followed by one of the escaped characters is kept as is.
func UnescapeHeredoc(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) && strings.IndexByte(heredocEscapes, text[i+1]) >= 0 {
			i++
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

// heredocDelimiter returns a delimiter word that doesn't occur as a line of body.
func heredocDelimiter(body string) string {
	lines := make(map[string]struct{})
	for _, line := range strings.Split(body, "\n") {
		lines[line] = struct{}{}
	}
	delim := "EOF"
	for n := 1; ; n++ {
		if _, taken := lines[delim]; !taken {
			return delim
		}
		delim = fmt.Sprintf("EOF_%d", n)
	}
}
