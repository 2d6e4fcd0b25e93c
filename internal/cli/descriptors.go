package cli

import (
	"context"
	"fmt"

	"github.com/me/smkplugin/internal/language"
	"github.com/me/smkplugin/internal/reader"
	"github.com/me/smkplugin/pkg/model"
	"github.com/spf13/cobra"
)

// siblingLister is implemented by plugins that can read descriptors sitting
// next to the primary one without an include.
type siblingLister interface {
	SiblingDescriptors(ctx context.Context, initialPath string, r language.FileReader) (model.IndexedFiles, error)
}

// descriptor is a primary descriptor loaded through the configured reader.
type descriptor struct {
	plugin      language.Interface
	initialPath string
	contents    string
	files       model.IndexedFiles
	reader      language.FileReader
}

// loadDescriptor finds the plugin for path, reads the root through the
// configured reader and indexes its includes.
func loadDescriptor(ctx context.Context, path string) (*descriptor, error) {
	p, ok := registry.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("no language plugin recognizes %q", path)
	}

	fr, err := reader.New(cfg.Reader, logger)
	if err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}

	contents, err := fr.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	files, err := p.IndexWorkflowFiles(ctx, path, contents, fr)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}

	return &descriptor{plugin: p, initialPath: path, contents: contents, files: files, reader: fr}, nil
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <path>",
		Short: "Check whether a path is a primary descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := model.MatchResult{Path: args[0]}
			if p, ok := registry.ForPath(args[0]); ok {
				result.Matches = true
				result.Language = p.DescriptorLanguage()
			}
			return writeOutput(cmd, result)
		},
	}
}

func newIndexCmd() *cobra.Command {
	var siblings bool

	cmd := &cobra.Command{
		Use:   "index <path>",
		Short: "List the rule files a primary descriptor includes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDescriptor(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if siblings {
				sl, ok := d.plugin.(siblingLister)
				if !ok {
					return fmt.Errorf("language %s cannot list sibling descriptors", d.plugin.DescriptorLanguage())
				}
				extra, err := sl.SiblingDescriptors(cmd.Context(), d.initialPath, d.reader)
				if err != nil {
					return fmt.Errorf("list siblings of %s: %w", d.initialPath, err)
				}
				// Included files win over siblings with the same path.
				extra.Merge(d.files)
				d.files = extra
			}

			return writeOutput(cmd, model.IndexResult{
				InitialPath: d.initialPath,
				Language:    d.plugin.DescriptorLanguage(),
				Files:       d.files,
			})
		},
	}

	cmd.Flags().BoolVar(&siblings, "siblings", false, "Also read rule files next to the descriptor")
	return cmd
}

func newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <path>",
		Short: "Show workflow metadata for a primary descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDescriptor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, d.plugin.ParseWorkflowForMetadata(d.initialPath, d.contents, d.files))
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a primary descriptor and its indexed files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDescriptor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			wf := d.plugin.ValidateWorkflowSet(d.initialPath, d.contents, d.files)
			tp := d.plugin.ValidateTestParameterSet(d.files.OfType(model.FileTypeTestParameterFile))
			if err := writeOutput(cmd, map[string]model.VersionTypeValidation{
				"workflow_set":       wf,
				"test_parameter_set": tp,
			}); err != nil {
				return err
			}
			if !wf.Valid || !tp.Valid {
				return fmt.Errorf("%s is not valid", d.initialPath)
			}
			return nil
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools <path>",
		Short: "Show the tools table for a primary descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDescriptor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, d.plugin.GenerateToolsTable(d.initialPath, d.contents, d.files))
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List registered descriptor languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd, registry.Languages())
		},
	}
}
