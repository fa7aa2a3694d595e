// Package plugin defines the language plugin contract and the registry
// through which plugins are resolved by name.
//
// A language plugin knows how to find GraphQL documents embedded in source
// files of its language, and how to render the generated artifact for each
// compiled document. Built-in plugins register themselves at init time;
// external plugins import this package and call Register under the
// "relaygen-language-<name>" naming convention.
package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// ExternalPluginPrefix is the conventional registration name prefix for
// plugins that live outside this module.
const ExternalPluginPrefix = "relaygen-language-"

// Tag is one GraphQL document found embedded in a source file.
type Tag struct {
	// Template is the raw GraphQL document text, exactly as embedded.
	Template string
	// SourceFile is the path of the file the tag was found in.
	SourceFile string
	// Line is the 1-based line the document text starts on.
	Line int
}

// ModuleProps carries everything a plugin needs to render one artifact.
type ModuleProps struct {
	// Name of the operation or fragment the artifact is generated from.
	Name string
	// Kind is "operation" or "fragment".
	Kind string
	// OperationType is query, mutation or subscription; empty for fragments.
	OperationType string
	// DocumentText is the formatted GraphQL text of the compiled document.
	DocumentText string
	// TypeText is the plugin's own generated type text for the document.
	TypeText string
	// Hash identifies the document text; changes when the document changes.
	Hash string
	// SourceFile is the file the document was found in.
	SourceFile string
}

// Plugin is the capability bundle a target language provides. A plugin is
// resolved once per run and treated as immutable for the run's duration.
type Plugin interface {
	// Name is the identifier the plugin is resolved by.
	Name() string
	// InputExtensions are the source file extensions to scan, without dots.
	InputExtensions() []string
	// OutputExtension is the artifact file extension, without a dot.
	OutputExtension() string
	// FindTags locates embedded GraphQL documents in a source file's text.
	FindTags(text string, sourceFile string) []Tag
	// FormatModule renders the full artifact file for one document.
	FormatModule(props ModuleProps) ([]byte, error)
	// GenerateTypes renders the language's type text for one document.
	GenerateTypes(in TypeGenInput) (string, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Plugin{}
)

// Register adds a plugin to the registry. Registering two plugins under the
// same name is a programming error and panics.
func Register(p Plugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[p.Name()]; dup {
		panic(fmt.Sprintf("plugin: Register called twice for %q", p.Name()))
	}
	registry[p.Name()] = p
}

// Get resolves a language identifier to a registered plugin. Built-in names
// are tried as-is, then under the external plugin naming convention.
func Get(language string) (Plugin, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if p, ok := registry[language]; ok {
		return p, nil
	}
	if p, ok := registry[ExternalPluginPrefix+language]; ok {
		return p, nil
	}
	return nil, fmt.Errorf(
		"unknown language %q: no plugin is registered under %q or %q; "+
			"external language plugins must import relaygen/plugin and call "+
			"plugin.Register from an init function",
		language, language, ExternalPluginPrefix+language)
}

// Names returns the registered plugin names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
