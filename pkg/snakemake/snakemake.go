// Package snakemake provides Snakemake descriptor recognition and
// include-directive helpers.
package snakemake

import (
	"regexp"
	"strings"
)

const (
	// PrimaryDescriptorName is the base name of a workflow's entry point.
	PrimaryDescriptorName = "Snakefile"

	// RuleFileExtension is the extension required of included rule files.
	RuleFileExtension = ".smk"

	// WorkflowDescription is the placeholder description reported for
	// non-empty primary descriptors.
	WorkflowDescription = "SnakeMake workflow description"
)

// InitialPathPattern matches paths whose base name is exactly Snakefile.
var InitialPathPattern = regexp.MustCompile(`^(?:.*/)?Snakefile$`)

// includePattern captures the quoted path after an include: keyword.
// The path runs until whitespace, a quote or a backslash.
var includePattern = regexp.MustCompile(`\binclude:\s*"\s?([^\s"\\]+)`)

// MatchesInitialPath reports whether path names a primary descriptor.
// No extension variants are accepted.
func MatchesInitialPath(path string) bool {
	return InitialPathPattern.MatchString(path)
}

// ExtractIncludes returns the quoted path of every include: directive in
// contents, in order of appearance. Duplicates are preserved.
func ExtractIncludes(contents string) []string {
	matches := includePattern.FindAllStringSubmatch(contents, -1)
	targets := make([]string, 0, len(matches))
	for _, m := range matches {
		targets = append(targets, m[1])
	}
	return targets
}

// IsRuleFile reports whether name carries the rule file extension.
func IsRuleFile(name string) bool {
	return strings.HasSuffix(name, RuleFileExtension)
}

// BaseDir returns everything before the last slash of path.
// A path without a slash has an empty base directory.
func BaseDir(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// ResolveInclude places target relative to the directory of the including
// file. The result is a plain join; "." and ".." segments are kept.
func ResolveInclude(includingPath, target string) string {
	if !strings.Contains(includingPath, "/") {
		return target
	}
	return BaseDir(includingPath) + "/" + target
}
