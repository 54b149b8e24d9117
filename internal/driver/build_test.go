package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"graft/internal/resource"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const cardModule = "export const Card = (props) => <div />;\n"

const bannerExtension = `export default {
  name: "banner",
  resourceId: "acme/widgets/card:Card",
  sortOrder: -5,
  wrap: (props, next) => next(props),
};
`

func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "package.json"), `{"name": "acme"}`)
	write(t, filepath.Join(root, "graft.toml"), `base = "src"`)
	write(t, filepath.Join(root, "src", "widgets", "card.tsx"), cardModule)
	write(t, filepath.Join(root, "ext", "banner.extension.ts"), bannerExtension)
	return root
}

func TestBuildRewritesWorkspace(t *testing.T) {
	root := newWorkspace(t)
	out := t.TempDir()

	res, err := Build(context.Background(), Options{Root: root, OutDir: out})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", res.WorkspaceBag)
	}
	if res.Changed != 1 {
		t.Fatalf("Changed = %d, want 1", res.Changed)
	}
	if len(res.Aggregators) != 1 {
		t.Fatalf("aggregators = %v, want one", res.Aggregators)
	}
	wantAgg := filepath.Join(root, ".graft", "agg",
		resource.ID("acme/widgets/card:Card").Hash8()+".js")
	if res.Aggregators[0] != wantAgg {
		t.Fatalf("aggregator at %s, want %s", res.Aggregators[0], wantAgg)
	}

	rewritten, err := os.ReadFile(filepath.Join(out, "src", "widgets", "card.tsx"))
	if err != nil {
		t.Fatalf("mirrored output missing: %v", err)
	}
	if !strings.Contains(string(rewritten), `__graft_component("acme/widgets/card:Card", `) {
		t.Fatalf("module not rewritten:\n%s", rewritten)
	}

	// The source tree stays untouched when mirroring.
	orig, err := os.ReadFile(filepath.Join(root, "src", "widgets", "card.tsx"))
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != cardModule {
		t.Fatal("in-place source modified despite --out")
	}
}

func TestBuildNestedPackageImportsRootAggregators(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "package.json"), `{"name": "acme"}`)
	write(t, filepath.Join(root, "graft.toml"), `base = "."`)
	write(t, filepath.Join(root, "packages", "widgets", "package.json"), `{"name": "widgets"}`)
	write(t, filepath.Join(root, "packages", "widgets", "card.tsx"), cardModule)
	write(t, filepath.Join(root, "ext", "banner.extension.ts"), strings.ReplaceAll(
		bannerExtension, "acme/widgets/card:Card", "widgets/card:Card"))
	out := t.TempDir()

	res, err := Build(context.Background(), Options{Root: root, OutDir: out})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", res.WorkspaceBag)
	}

	id := resource.ID("widgets/card:Card")
	wantAgg := filepath.Join(root, ".graft", "agg", id.Hash8()+".js")
	if len(res.Aggregators) != 1 || res.Aggregators[0] != wantAgg {
		t.Fatalf("aggregators = %v, want %s", res.Aggregators, wantAgg)
	}

	rewritten, err := os.ReadFile(filepath.Join(out, "packages", "widgets", "card.tsx"))
	if err != nil {
		t.Fatalf("mirrored output missing: %v", err)
	}
	// The import must climb out of the nested package to where the
	// aggregator was actually written, not assume a sibling .graft dir.
	want := `from "../../.graft/agg/` + id.Hash8() + `.js";`
	if !strings.Contains(string(rewritten), want) {
		t.Fatalf("aggregator import not anchored at the build root:\nwant %s\n%s", want, rewritten)
	}
}

func TestBuildUsesDiskCache(t *testing.T) {
	root := newWorkspace(t)
	out := t.TempDir()
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Root: root, OutDir: out, Cache: cache}

	first, err := Build(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Files[0].Cached {
		t.Fatal("first build must not hit the cache")
	}

	second, err := Build(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Files[0].Cached {
		t.Fatal("second build should hit the cache")
	}
	if second.Changed != 1 {
		t.Fatalf("cached build Changed = %d, want 1", second.Changed)
	}

	// A new extension for the same id invalidates the cached rewrite.
	write(t, filepath.Join(root, "ext", "tracker.extension.ts"), strings.ReplaceAll(
		bannerExtension, `"banner"`, `"tracker"`))
	third, err := Build(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Files[0].Cached {
		t.Fatal("extension-set change must invalidate the cache")
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	root := newWorkspace(t)

	res, err := Build(context.Background(), Options{Root: root, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed != 1 {
		t.Fatalf("Changed = %d, want 1 (reported, not written)", res.Changed)
	}
	if _, err := os.Stat(filepath.Join(root, ".graft")); !os.IsNotExist(err) {
		t.Fatal("dry run must not write aggregators")
	}
	orig, err := os.ReadFile(filepath.Join(root, "src", "widgets", "card.tsx"))
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != cardModule {
		t.Fatal("dry run must not touch sources")
	}
}

func TestBuildEmitsProgressEvents(t *testing.T) {
	root := newWorkspace(t)
	events := make(chan Event, 16)

	res, err := Build(context.Background(), Options{Root: root, DryRun: true, Events: events})
	if err != nil {
		t.Fatal(err)
	}
	close(events)

	n := 0
	for ev := range events {
		n++
		if ev.Total != len(res.Files) {
			t.Fatalf("event total = %d, want %d", ev.Total, len(res.Files))
		}
	}
	if n != len(res.Files) {
		t.Fatalf("got %d events, want %d", n, len(res.Files))
	}
}
