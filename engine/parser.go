package engine

import (
	"github.com/apiplustech/relaygen/plugin"
	"github.com/apiplustech/relaygen/watchman"
)

// RawDocument is one GraphQL document extracted from a source file but not
// yet parsed. Line is 1-based within the source file.
type RawDocument struct {
	Text       string
	SourceFile string
	Line       int
}

// DocumentParser extracts raw GraphQL documents from one file's contents.
type DocumentParser interface {
	Parse(path string, content []byte) ([]RawDocument, error)
}

// ParserConfig describes one logical file set: where its files live, how to
// enumerate them, and how to extract documents from them.
type ParserConfig struct {
	// BaseDir is the directory file paths are relative to.
	BaseDir string
	// ListFiles enumerates the file set for a one-shot compile, as paths
	// relative to BaseDir.
	ListFiles func() ([]string, error)
	// Expression matches the same file set through the file-watch service;
	// nil when watching is unavailable.
	Expression watchman.Expr
	// Parser extracts documents from a file in the set.
	Parser DocumentParser
}

// tagParser extracts documents through a language plugin's tag finder.
type tagParser struct {
	plugin plugin.Plugin
}

// NewTagParser builds a parser for documents embedded in application source
// files of the plugin's language.
func NewTagParser(p plugin.Plugin) DocumentParser {
	return &tagParser{plugin: p}
}

func (p *tagParser) Parse(path string, content []byte) ([]RawDocument, error) {
	tags := p.plugin.FindTags(string(content), path)
	docs := make([]RawDocument, 0, len(tags))
	for _, tag := range tags {
		docs = append(docs, RawDocument{
			Text:       tag.Template,
			SourceFile: tag.SourceFile,
			Line:       tag.Line,
		})
	}
	return docs, nil
}

// sdlParser treats the whole file as one standalone GraphQL document.
type sdlParser struct{}

// NewSDLParser builds a parser for standalone .graphql document files.
func NewSDLParser() DocumentParser {
	return sdlParser{}
}

func (sdlParser) Parse(path string, content []byte) ([]RawDocument, error) {
	return []RawDocument{{Text: string(content), SourceFile: path, Line: 1}}, nil
}
