package language

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/me/smkplugin/pkg/model"
)

// Registry maps DescriptorLanguage values to their plugins.
// Registration happens at startup before concurrent access, so no mutex is needed.
type Registry struct {
	plugins map[model.DescriptorLanguage]Interface
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		plugins: make(map[model.DescriptorLanguage]Interface),
		logger:  logger.With("component", "language-registry"),
	}
}

// Register adds a plugin to the registry, keyed by its DescriptorLanguage().
// A later registration for the same language replaces the earlier one.
func (r *Registry) Register(p Interface) {
	lang := p.DescriptorLanguage()
	if _, exists := r.plugins[lang]; exists {
		r.logger.Warn("language plugin replaced", "language", lang)
	}
	r.plugins[lang] = p
	r.logger.Info("language plugin registered", "language", lang)
}

// Get returns the plugin for the given language or an error if none is registered.
func (r *Registry) Get(lang model.DescriptorLanguage) (Interface, error) {
	p, ok := r.plugins[lang]
	if !ok {
		return nil, fmt.Errorf("no plugin registered for language %q", lang)
	}
	return p, nil
}

// ForPath returns the plugin whose primary descriptor pattern matches path.
// Languages are tried in sorted order so the result is deterministic.
func (r *Registry) ForPath(path string) (Interface, bool) {
	for _, lang := range r.Languages() {
		p := r.plugins[lang]
		if p.MatchesInitialPath(path) {
			return p, true
		}
	}
	return nil, false
}

// Languages returns the registered languages in sorted order.
func (r *Registry) Languages() []model.DescriptorLanguage {
	langs := make([]model.DescriptorLanguage, 0, len(r.plugins))
	for lang := range r.plugins {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
