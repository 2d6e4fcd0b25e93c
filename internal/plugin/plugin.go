// Package plugin implements the Snakemake descriptor language plugin.
//
// The plugin recognizes a workflow's Snakefile, indexes the rule files it
// pulls in with include: directives, and reports placeholder metadata,
// validation and tool tables. It keeps no state between calls.
package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/smkplugin/internal/language"
	"github.com/me/smkplugin/pkg/model"
	"github.com/me/smkplugin/pkg/snakemake"
)

// Language is the descriptor language served by this plugin.
const Language = model.LanguageSMK

var _ language.Interface = (*Plugin)(nil)

// Plugin is the Snakemake language plugin.
type Plugin struct {
	logger *slog.Logger
}

// New creates a Plugin with the given logger.
func New(logger *slog.Logger) *Plugin {
	return &Plugin{logger: logger.With("component", "snakemake-plugin")}
}

// Register creates a Plugin and adds it to reg.
func Register(reg *language.Registry, logger *slog.Logger) *Plugin {
	p := New(logger)
	reg.Register(p)
	return p
}

// DescriptorLanguage returns SMK.
func (p *Plugin) DescriptorLanguage() model.DescriptorLanguage {
	return Language
}

// MatchesInitialPath reports whether path's base name is exactly Snakefile.
func (p *Plugin) MatchesInitialPath(path string) bool {
	return snakemake.MatchesInitialPath(path)
}

// IndexWorkflowFiles returns the rule files included by the primary
// descriptor, keyed by the descriptor's directory joined with the target.
// Targets without the .smk extension are skipped. The first reader error
// aborts indexing and is returned.
func (p *Plugin) IndexWorkflowFiles(ctx context.Context, initialPath, contents string, reader language.FileReader) (model.IndexedFiles, error) {
	targets := snakemake.ExtractIncludes(contents)
	results := make(model.IndexedFiles, len(targets))

	for _, target := range targets {
		if !snakemake.IsRuleFile(target) {
			p.logger.Debug("include skipped", "initial_path", initialPath, "target", target)
			continue
		}

		resolved := snakemake.ResolveInclude(initialPath, target)
		content, err := reader.ReadFile(ctx, resolved)
		if err != nil {
			return nil, fmt.Errorf("read included file %q: %w", resolved, err)
		}
		results[resolved] = model.IndexedFile{Content: content, Type: model.FileTypeImportedDescriptor}
	}

	p.logger.Debug("workflow indexed", "initial_path", initialPath, "includes", len(targets), "files", len(results))
	return results, nil
}

// SiblingDescriptors reads every rule file that sits next to the primary
// descriptor, whether or not it is included.
func (p *Plugin) SiblingDescriptors(ctx context.Context, initialPath string, reader language.FileReader) (model.IndexedFiles, error) {
	dir := parentDir(initialPath)
	listed, err := reader.ListFiles(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}

	results := make(model.IndexedFiles)
	for _, f := range listed {
		if !snakemake.IsRuleFile(f) {
			continue
		}
		content, err := reader.ReadFile(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("read sibling file %q: %w", f, err)
		}
		results[f] = model.IndexedFile{Content: content, Type: model.FileTypeImportedDescriptor}
	}
	return results, nil
}

func parentDir(initialPath string) string {
	dir := snakemake.BaseDir(initialPath)
	if dir != "" {
		return dir
	}
	if len(initialPath) > 0 && initialPath[0] == '/' {
		return "/"
	}
	return "."
}

// ValidateWorkflowSet always reports a valid workflow.
func (p *Plugin) ValidateWorkflowSet(initialPath, contents string, indexed model.IndexedFiles) model.VersionTypeValidation {
	return model.NewValidValidation()
}

// ValidateTestParameterSet always reports a valid parameter set.
func (p *Plugin) ValidateTestParameterSet(indexed model.IndexedFiles) model.VersionTypeValidation {
	return model.NewValidValidation()
}

// ParseWorkflowForMetadata sets a fixed description when the primary
// descriptor has content and leaves every field unset otherwise.
func (p *Plugin) ParseWorkflowForMetadata(initialPath, contents string, indexed model.IndexedFiles) model.WorkflowMetadata {
	var metadata model.WorkflowMetadata
	if contents != "" {
		metadata.Description = snakemake.WorkflowDescription
	}
	return metadata
}

// LaunchInstructions has nothing to offer for Snakemake workflows.
func (p *Plugin) LaunchInstructions(trsID string) string {
	return ""
}
