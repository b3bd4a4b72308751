// File: vocabulary.go
// Title: Bilingual Vocabulary Registry
// Description: Registry mapping English and Arabic spellings to canonical
//              keyword names and native function aliases.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial registry implementation
// - 2025-10-02 v0.2.0: Keyword spellings per language, native aliases

package vocabulary

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/msto63/bayan/foundation/core/log"
)

// Language identifies the vocabulary a spelling belongs to
type Language int

const (
	English Language = iota
	Arabic
)

// String returns the language name
func (l Language) String() string {
	switch l {
	case English:
		return "en"
	case Arabic:
		return "ar"
	default:
		return "unknown"
	}
}

// Keyword describes one canonical keyword and its spellings
type Keyword struct {
	Canonical string                // lowercase English name, e.g. "function"
	Spellings map[Language][]string // first spelling per language is preferred
}

// Match is the result of classifying a word
type Match struct {
	Canonical string
	Language  Language
}

// Options configures registry behavior
type Options struct {
	Logger        *log.Logger
	EnableAliases bool
}

// Registry is a concurrency-safe keyword and alias table
type Registry struct {
	keywords map[string]*Keyword // canonical -> keyword
	lookup   map[string]Match    // normalized spelling -> match
	aliases  map[string]string   // alias -> native name
	logger   *log.Logger
	options  Options
	mutex    sync.RWMutex
}

// New creates a registry preloaded with the Bayan keyword set
func New(opts Options) (*Registry, error) {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}

	r := &Registry{
		keywords: make(map[string]*Keyword),
		lookup:   make(map[string]Match),
		aliases:  make(map[string]string),
		logger:   opts.Logger.WithField("component", "vocabulary"),
		options:  opts,
	}

	for _, kw := range builtinKeywords() {
		if err := r.Register(kw); err != nil {
			return nil, fmt.Errorf("failed to register builtin keyword %s: %w", kw.Canonical, err)
		}
	}
	if opts.EnableAliases {
		for alias, native := range builtinAliases {
			if err := r.RegisterAlias(alias, native); err != nil {
				return nil, fmt.Errorf("failed to register alias %s: %w", alias, err)
			}
		}
	}

	r.logger.Debug("vocabulary initialized", log.Fields{
		"keywordCount": len(r.keywords),
		"aliasCount":   len(r.aliases),
	})
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry with aliases enabled
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := New(Options{Logger: log.Discard(), EnableAliases: true})
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register adds a keyword. A spelling may belong to only one keyword.
func (r *Registry) Register(kw *Keyword) error {
	if kw == nil || strings.TrimSpace(kw.Canonical) == "" {
		return fmt.Errorf("keyword must have a canonical name")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.keywords[kw.Canonical]; exists {
		return fmt.Errorf("keyword %s already registered", kw.Canonical)
	}
	for lang, spellings := range kw.Spellings {
		for _, s := range spellings {
			key := Normalize(s)
			if prev, taken := r.lookup[key]; taken {
				return fmt.Errorf("spelling %q already bound to %s", s, prev.Canonical)
			}
			r.lookup[key] = Match{Canonical: kw.Canonical, Language: lang}
		}
	}
	r.keywords[kw.Canonical] = kw
	return nil
}

// Lookup classifies a word as a keyword
func (r *Registry) Lookup(word string) (Match, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	m, ok := r.lookup[Normalize(word)]
	return m, ok
}

// IsKeyword reports whether word is a keyword in either language
func (r *Registry) IsKeyword(word string) bool {
	_, ok := r.Lookup(word)
	return ok
}

// Spelling returns the preferred spelling of a canonical keyword in lang
func (r *Registry) Spelling(canonical string, lang Language) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	kw, ok := r.keywords[canonical]
	if !ok || len(kw.Spellings[lang]) == 0 {
		return "", false
	}
	return kw.Spellings[lang][0], true
}

// Keywords returns canonical keyword names in sorted order
func (r *Registry) Keywords() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.keywords))
	for name := range r.keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterAlias binds an alternative name to a native function
func (r *Registry) RegisterAlias(alias, native string) error {
	if !r.options.EnableAliases {
		return fmt.Errorf("aliases are disabled in this registry")
	}
	if strings.TrimSpace(alias) == "" || strings.TrimSpace(native) == "" {
		return fmt.Errorf("alias and native name cannot be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, isKeyword := r.lookup[Normalize(alias)]; isKeyword {
		return fmt.Errorf("alias %q collides with a keyword", alias)
	}
	r.aliases[alias] = native
	return nil
}

// ResolveAlias returns the native name for alias, or name itself
func (r *Registry) ResolveAlias(name string) string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if native, ok := r.aliases[name]; ok {
		return native
	}
	return name
}

// Aliases returns a copy of the alias table
func (r *Registry) Aliases() map[string]string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Normalize folds Arabic orthographic variants for keyword matching
func Normalize(word string) string {
	if isASCII(word) {
		return word
	}
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		switch r {
		case 'ـ': // tatweel
			continue
		case 'أ', 'إ', 'آ', 'ٱ':
			b.WriteRune('ا')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
