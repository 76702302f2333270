package format

import "strings"

// v1Specials are the characters legacy Markdown treats as entity markers.
const v1Specials = "_*`["

var mdV1Replacer = newEscaper(v1Specials)

func newEscaper(specials string) *strings.Replacer {
	pairs := make([]string, 0, len(specials)*2)
	for _, r := range specials {
		pairs = append(pairs, string(r), `\`+string(r))
	}
	return strings.NewReplacer(pairs...)
}

// EscapeV1 escapes text for legacy Markdown outside of any entity.
func EscapeV1(text string) string {
	return mdV1Replacer.Replace(text)
}

// BoldV1 renders text in bold for legacy Markdown. Escapes are not allowed
// inside an entity, so the bold span is closed before each special
// character and reopened after it: "2*2" becomes `*2*\**2*`.
func BoldV1(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	run := 0
	flush := func(end int) {
		if end > run {
			b.WriteByte('*')
			b.WriteString(text[run:end])
			b.WriteByte('*')
		}
	}
	for i := 0; i < len(text); i++ {
		if strings.IndexByte(v1Specials, text[i]) < 0 {
			continue
		}
		flush(i)
		b.WriteByte('\\')
		b.WriteByte(text[i])
		run = i + 1
	}
	flush(len(text))
	return b.String()
}
