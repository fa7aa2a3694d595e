package plugin

import (
	"strings"
	"unicode"
)

// findTaggedTemplates scans source text for backtick template literals
// tagged with the given identifier, e.g. graphql`...`. It is a lexical
// scan, not a parse: a tag inside a comment or string will still match,
// mirroring how embedded documents are located at build time rather than
// through a full language front end.
func findTaggedTemplates(text, sourceFile, tag string) []Tag {
	var tags []Tag
	pos := 0
	for {
		idx := strings.Index(text[pos:], tag)
		if idx < 0 {
			return tags
		}
		start := pos + idx
		pos = start + len(tag)
		if start > 0 && isIdentRune(rune(text[start-1])) {
			continue
		}
		open := skipSpace(text, pos)
		if open >= len(text) || text[open] != '`' {
			continue
		}
		end := strings.IndexByte(text[open+1:], '`')
		if end < 0 {
			return tags
		}
		tags = append(tags, Tag{
			Template:   text[open+1 : open+1+end],
			SourceFile: sourceFile,
			Line:       1 + strings.Count(text[:open], "\n"),
		})
		pos = open + 1 + end + 1
	}
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t') {
		pos++
	}
	return pos
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
