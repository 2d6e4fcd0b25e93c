// Package language defines the contract between a workflow-hosting platform
// and a descriptor language plugin.
package language

import (
	"context"

	"github.com/me/smkplugin/pkg/model"
)

// FileReader is supplied by the host to give plugins access to the files of
// a workflow repository. Paths are slash-separated and repository-relative.
type FileReader interface {
	// ReadFile returns the content of the file at path.
	ReadFile(ctx context.Context, path string) (string, error)

	// ListFiles returns the paths of the files directly inside dir.
	ListFiles(ctx context.Context, dir string) ([]string, error)
}

// Interface is implemented by every descriptor language plugin.
type Interface interface {
	// DescriptorLanguage returns the language this plugin handles.
	DescriptorLanguage() model.DescriptorLanguage

	// MatchesInitialPath reports whether path is a primary descriptor.
	MatchesInitialPath(path string) bool

	// IndexWorkflowFiles discovers the files a primary descriptor pulls in.
	IndexWorkflowFiles(ctx context.Context, initialPath, contents string, reader FileReader) (model.IndexedFiles, error)

	// ParseWorkflowForMetadata extracts descriptive metadata.
	ParseWorkflowForMetadata(initialPath, contents string, indexed model.IndexedFiles) model.WorkflowMetadata

	// ValidateWorkflowSet validates a primary descriptor and its indexed files.
	ValidateWorkflowSet(initialPath, contents string, indexed model.IndexedFiles) model.VersionTypeValidation

	// ValidateTestParameterSet validates a set of test parameter files.
	ValidateTestParameterSet(indexed model.IndexedFiles) model.VersionTypeValidation

	// LoadCytoscapeElements returns a Cytoscape.js compatible element map,
	// or nil when the language has no graph model.
	LoadCytoscapeElements(initialPath, contents string, indexed model.IndexedFiles) map[string]any

	// GenerateToolsTable returns one row per workflow step.
	GenerateToolsTable(initialPath, contents string, indexed model.IndexedFiles) []model.RowData

	// LaunchInstructions returns launch help for a TRS ID, or "".
	LaunchInstructions(trsID string) string
}
