package plugin

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"pgregory.net/rapid"

	"github.com/me/smkplugin/internal/reader"
	"github.com/me/smkplugin/pkg/model"
)

func TestIndexWorkflowFiles_Property(t *testing.T) {
	p := New(newTestLogger())
	names := []string{"rules/a.smk", "rules/b.smk", "common.smk", "helpers.py", "config.yaml"}
	fsys := fstest.MapFS{}
	for _, n := range names {
		fsys["workflow/"+n] = &fstest.MapFile{Data: []byte("content of " + n)}
	}
	r := reader.NewFSReader(fsys, newTestLogger())

	rapid.Check(t, func(t *rapid.T) {
		picked := rapid.SliceOfN(rapid.SampledFrom(names), 0, 8).Draw(t, "includes")

		var b strings.Builder
		for _, n := range picked {
			b.WriteString(`include: "` + n + `"` + "\n")
		}
		contents := b.String()

		first, err := p.IndexWorkflowFiles(context.Background(), "/workflow/Snakefile", contents, r)
		if err != nil {
			t.Fatalf("IndexWorkflowFiles() error: %v", err)
		}
		second, err := p.IndexWorkflowFiles(context.Background(), "/workflow/Snakefile", contents, r)
		if err != nil {
			t.Fatalf("IndexWorkflowFiles() second call error: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("results differ between calls: %v vs %v", first, second)
		}

		want := map[string]bool{}
		for _, n := range picked {
			if strings.HasSuffix(n, ".smk") {
				want["/workflow/"+n] = true
			}
		}
		if len(first) != len(want) {
			t.Fatalf("indexed %v, want %v", first.Paths(), want)
		}
		for path, f := range first {
			if !want[path] {
				t.Fatalf("unexpected path %q", path)
			}
			if f.Type != model.FileTypeImportedDescriptor {
				t.Fatalf("%s type = %q", path, f.Type)
			}
			if !strings.HasSuffix(path, ".smk") {
				t.Fatalf("%s lacks the rule file extension", path)
			}
		}
	})
}
