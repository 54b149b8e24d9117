package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"graft/internal/diag"
	"graft/internal/resource"
	"graft/internal/source"
)

// testModule lays out an acme workspace with base root src and returns the
// absolute path of a module containing content.
func testModule(t *testing.T, relPath, content string) string {
	t.Helper()
	root := t.TempDir()
	write := func(path, data string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(root, "package.json"), `{"name": "acme"}`)
	write(filepath.Join(root, "graft.toml"), `base = "src"`)
	abs := filepath.Join(root, relPath)
	write(abs, content)
	return abs
}

func rewriteOnce(t *testing.T, absPath, src string, opts Options) Result {
	t.Helper()
	bag := diag.NewBag(32)
	if opts.Reporter == nil {
		opts.Reporter = diag.BagReporter{Bag: bag}
	}
	rw := New(resource.NewResolver(), opts)
	res, err := rw.Rewrite(source.NewFileSet(), absPath, src)
	if err != nil {
		t.Fatalf("Rewrite: %v\n%s", err, bag)
	}
	return res
}

func wrapAll(resource.ID) bool { return true }

func TestRewriteComponentExport(t *testing.T) {
	src := "export const Card = (props) => <div>{props.title}</div>;\n"
	abs := testModule(t, "src/widgets/card.tsx", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: wrapAll})
	if !res.Changed {
		t.Fatal("expected a rewrite")
	}
	if !strings.Contains(res.Output, runtimeImport) {
		t.Fatalf("missing runtime import:\n%s", res.Output)
	}
	id := resource.ID("acme/widgets/card:Card")
	if !strings.Contains(res.Output, `__graft_component("acme/widgets/card:Card", `+aggBinding(id)+`, `) {
		t.Fatalf("missing component wrap:\n%s", res.Output)
	}
	// Implicit arrow return is normalized to block form.
	if !strings.Contains(res.Output, "(props) => { return <div>{props.title}</div>; })") {
		t.Fatalf("implicit return not normalized:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "import "+aggBinding(id)+" from \"../../.graft/agg/"+id.Hash8()+".js\";") {
		t.Fatalf("missing aggregator import:\n%s", res.Output)
	}
}

func TestRewriteFunctionDeclaration(t *testing.T) {
	src := "export async function load(id) {\n  return fetch(id);\n}\n"
	abs := testModule(t, "src/api/load.ts", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: wrapAll})
	if !strings.Contains(res.Output, `export const load = __graft_function("acme/api/load:load", `) {
		t.Fatalf("function declaration not rebound:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "async function load(id) {") {
		t.Fatalf("original function text lost:\n%s", res.Output)
	}
}

func TestRewriteDefaultExpression(t *testing.T) {
	src := "export default function Panel() {\n  return <section />;\n}\n"
	abs := testModule(t, "src/widgets/panel.tsx", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: wrapAll})
	if !strings.Contains(res.Output, `export default __graft_component("acme/widgets/panel", `) {
		t.Fatalf("default export not wrapped:\n%s", res.Output)
	}
}

func TestRewriteDefaultIdentifier(t *testing.T) {
	src := "const theme = { dark: true };\nexport default theme;\n"
	abs := testModule(t, "src/theme.ts", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: wrapAll})
	if !strings.Contains(res.Output, `export default __graft_value("acme/theme", `) {
		t.Fatalf("default identifier not wrapped as value:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, ", theme);") {
		t.Fatalf("original binding reference lost:\n%s", res.Output)
	}
}

func TestRewriteDestructuredPattern(t *testing.T) {
	src := "export const { parse, stringify } = makeCodec();\n"
	abs := testModule(t, "src/codec.ts", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: wrapAll})
	if !strings.Contains(res.Output, "const __graft_d0 = makeCodec();") {
		t.Fatalf("right-hand side not bound once:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, `export const parse = __graft_value("acme/codec:parse", `) ||
		!strings.Contains(res.Output, "__graft_d0.parse)") {
		t.Fatalf("pattern binding not wrapped:\n%s", res.Output)
	}
	if strings.Count(res.Output, "makeCodec()") != 1 {
		t.Fatalf("right-hand side evaluated more than once:\n%s", res.Output)
	}
}

func TestRewriteMixedPatternStatementLeftAlone(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"pattern first", "const o = { a: 1 };\nexport const { a } = o, b = 1;\n"},
		{"pattern last", "const o = { a: 1 };\nexport const b = 1, { a } = o;\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			abs := testModule(t, "src/mixed.ts", tc.src)
			bag := diag.NewBag(32)
			res := rewriteOnce(t, abs, tc.src, Options{
				HasExtensions: wrapAll,
				Reporter:      diag.BagReporter{Bag: bag},
			})
			if res.Changed || res.Output != tc.src {
				t.Fatalf("mixed declarator statement must stay intact:\n%s", res.Output)
			}
			skips := 0
			for _, d := range bag.Items() {
				if d.Code == diag.RwSkippedExport {
					skips++
				}
			}
			if skips != 1 {
				t.Fatalf("want one skip diagnostic, got %d:\n%s", skips, bag)
			}
		})
	}
}

func TestRewriteSpecifierList(t *testing.T) {
	src := "const fmt = (v) => String(v);\nconst limit = 10;\nexport { fmt, limit as max };\n"
	abs := testModule(t, "src/util.ts", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: wrapAll})
	if !strings.Contains(res.Output, `const __graft_e0 = __graft_function("acme/util:fmt", `) {
		t.Fatalf("specifier not rebound through a temp:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "export { __graft_e0 as fmt, __graft_e1 as max };") {
		t.Fatalf("public names changed:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, `__graft_value("acme/util:max", `) {
		t.Fatalf("value specifier not wrapped under its public name:\n%s", res.Output)
	}
}

func TestRewriteIdempotent(t *testing.T) {
	src := "export const Card = (props) => <div />;\nexport function helper() { return 1; }\n"
	abs := testModule(t, "src/card.tsx", src)
	opts := Options{HasExtensions: wrapAll}

	first := rewriteOnce(t, abs, src, opts)
	if !first.Changed {
		t.Fatal("first pass should rewrite")
	}
	second := rewriteOnce(t, abs, first.Output, opts)
	if second.Changed {
		t.Fatal("second pass must be a no-op")
	}
	if second.Output != first.Output {
		t.Fatalf("rewrite is not idempotent:\n%s\n----\n%s", first.Output, second.Output)
	}
}

func TestRewriteSkipsWithoutExtensions(t *testing.T) {
	src := "export const Card = (props) => <div />;\n"
	abs := testModule(t, "src/card.tsx", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: func(resource.ID) bool { return false }})
	if res.Changed || res.Output != src {
		t.Fatalf("module without extensions must stay untouched:\n%s", res.Output)
	}
}

func TestRewriteInstrumentAll(t *testing.T) {
	src := "export const Card = (props) => <div />;\n"
	abs := testModule(t, "src/card.tsx", src)

	res := rewriteOnce(t, abs, src, Options{InstrumentAll: true})
	if !strings.Contains(res.Output, `__graft_component("acme/card:Card", null, `) {
		t.Fatalf("instrument-all should wrap with a null list:\n%s", res.Output)
	}
	if strings.Contains(res.Output, AggBindingPrefix) {
		t.Fatalf("no aggregator import expected without known extension sets:\n%s", res.Output)
	}
}

func TestRewriteHonorsOptOutDirective(t *testing.T) {
	src := "\"use no-plugins\";\nexport const Card = (props) => <div />;\n"
	abs := testModule(t, "src/card.tsx", src)

	res := rewriteOnce(t, abs, src, Options{HasExtensions: wrapAll})
	if res.Changed || res.Output != src {
		t.Fatal("opted-out module must stay untouched")
	}
}

func TestRewriteSkipsIneligiblePaths(t *testing.T) {
	for _, path := range []string{
		"/ws/node_modules/dep/index.js",
		"/ws/src/types.d.ts",
		"/ws/.graft/agg/0a1b2c3d.js",
	} {
		if EligiblePath(path) {
			t.Errorf("EligiblePath(%q) = true, want false", path)
		}
	}
	if !EligiblePath("/ws/src/app.tsx") {
		t.Error("EligiblePath rejected a plain module")
	}
}

func TestRewriteParseErrorIsFatal(t *testing.T) {
	src := "export { ...broken };\n"
	abs := testModule(t, "src/broken.ts", src)

	bag := diag.NewBag(32)
	rw := New(resource.NewResolver(), Options{HasExtensions: wrapAll, Reporter: diag.BagReporter{Bag: bag}})
	res, err := rw.Rewrite(source.NewFileSet(), abs, src)
	if err == nil {
		t.Fatal("parse failure must surface as an error")
	}
	if res.Output != src {
		t.Fatal("original text must come back unchanged on parse failure")
	}
	if !bag.HasErrors() {
		t.Fatal("parse diagnostics must reach the reporter")
	}
}

func TestRewriteMissingManifestIsFatal(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "src", "a.ts")
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	src := "export const a = 1;\n"
	if err := os.WriteFile(abs, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	rw := New(resource.NewResolver(), Options{HasExtensions: wrapAll})
	_, err := rw.Rewrite(source.NewFileSet(), abs, src)
	if err == nil {
		t.Fatal("missing package.json must be fatal")
	}
}
