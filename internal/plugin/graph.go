package plugin

import (
	"net/url"

	"github.com/me/smkplugin/pkg/model"
)

// LoadCytoscapeElements returns nil: there is no Snakemake graph model yet.
func (p *Plugin) LoadCytoscapeElements(initialPath, contents string, indexed model.IndexedFiles) map[string]any {
	return nil
}

// GenerateToolsTable lists one TOOL row per Cytoscape node of the workflow.
// With no graph model the table is empty.
func (p *Plugin) GenerateToolsTable(initialPath, contents string, indexed model.IndexedFiles) []model.RowData {
	return rowsFromElements(p.LoadCytoscapeElements(initialPath, contents, indexed))
}

// rowsFromElements converts the "nodes" of a Cytoscape.js element map into
// table rows. Missing fields become empty strings.
func rowsFromElements(elements map[string]any) []model.RowData {
	rows := []model.RowData{}
	for _, node := range nodeList(elements["nodes"]) {
		data, _ := node["data"].(map[string]any)
		rows = append(rows, model.RowData{
			ToolID:          stringField(data, "id"),
			Label:           stringField(data, "label"),
			DockerContainer: stringField(data, "docker"),
			Filename:        stringField(data, "run"),
			Link:            parseLink(stringField(node, "repo_link")),
			RowType:         model.RowTypeTool,
		})
	}
	return rows
}

func nodeList(v any) []map[string]any {
	switch nodes := v.(type) {
	case []map[string]any:
		return nodes
	case []any:
		out := make([]map[string]any, 0, len(nodes))
		for _, n := range nodes {
			if m, ok := n.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// parseLink returns nil unless s is an absolute URL with a host.
func parseLink(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil
	}
	return u
}
