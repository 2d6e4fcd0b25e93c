package model

import (
	"encoding/json"
	"net/url"
)

// WorkflowMetadata is the descriptive information a language plugin
// extracts from a primary descriptor. Empty fields are unset.
type WorkflowMetadata struct {
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// VersionTypeValidation is the outcome of validating a set of files.
// Messages is keyed by file path.
type VersionTypeValidation struct {
	Valid    bool              `json:"valid" yaml:"valid"`
	Messages map[string]string `json:"messages" yaml:"messages"`
}

// NewValidValidation returns a successful validation with no messages.
func NewValidValidation() VersionTypeValidation {
	return VersionTypeValidation{Valid: true, Messages: map[string]string{}}
}

// RowType is the kind of row in a tools table.
type RowType string

const (
	RowTypeTool     RowType = "TOOL"
	RowTypeWorkflow RowType = "WORKFLOW"
)

// RowData is one row of the tools table shown by the host UI.
type RowData struct {
	ToolID          string
	Label           string
	DockerContainer string
	Filename        string
	Link            *url.URL
	RowType         RowType
}

// LinkString returns the row's link, or "" when it has none.
func (r RowData) LinkString() string {
	if r.Link == nil {
		return ""
	}
	return r.Link.String()
}

// rowView is the wire form of RowData with the link as a string.
type rowView struct {
	ToolID          string  `json:"tool_id" yaml:"tool_id"`
	Label           string  `json:"label" yaml:"label"`
	DockerContainer string  `json:"docker_container" yaml:"docker_container"`
	Filename        string  `json:"filename" yaml:"filename"`
	Link            string  `json:"link,omitempty" yaml:"link,omitempty"`
	RowType         RowType `json:"row_type" yaml:"row_type"`
}

func (r RowData) view() rowView {
	return rowView{
		ToolID:          r.ToolID,
		Label:           r.Label,
		DockerContainer: r.DockerContainer,
		Filename:        r.Filename,
		Link:            r.LinkString(),
		RowType:         r.RowType,
	}
}

// MarshalJSON encodes the link as a string.
func (r RowData) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// MarshalYAML encodes the link as a string.
func (r RowData) MarshalYAML() (any, error) {
	return r.view(), nil
}
