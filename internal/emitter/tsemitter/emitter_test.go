package tsemitter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEmitDryRunPlan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	res, err := Emit(ctx, widgetService(), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.ServiceName != "widget-store" {
		t.Errorf("service name = %q", res.ServiceName)
	}

	want := []string{
		"widget-store/mappers.ts",
		"widget-store/widgetServiceClient.ts",
	}
	if len(res.Planned) != len(want) {
		t.Fatalf("planned = %+v", res.Planned)
	}
	for i, p := range res.Planned {
		if p.RelPath != want[i] {
			t.Errorf("planned[%d] = %q, want %q", i, p.RelPath, want[i])
		}
		if p.Size == 0 {
			t.Errorf("planned[%d] has zero size", i)
		}
	}

	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("dry-run must not write files")
	}
}

func TestEmitWritesArtifacts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := Emit(ctx, widgetService(), Options{OutDir: dir}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	mappers, err := os.ReadFile(filepath.Join(dir, "widget-store", "mappers.ts"))
	if err != nil {
		t.Fatalf("read mappers: %v", err)
	}
	mustContain(t, string(mappers), "export function wireToWidget")

	client, err := os.ReadFile(filepath.Join(dir, "widget-store", "widgetServiceClient.ts"))
	if err != nil {
		t.Fatalf("read client: %v", err)
	}
	mustContain(t, string(client), "export class WidgetServiceClient")
	mustContain(t, string(client), "from './mappers';")
}

func TestEmitRefusesNonEmptyDir(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed dir: %v", err)
	}

	if _, err := Emit(ctx, widgetService(), Options{OutDir: dir}); err == nil {
		t.Fatalf("expected error for non-empty output directory")
	}
	if _, err := Emit(ctx, widgetService(), Options{OutDir: dir, Force: true}); err != nil {
		t.Fatalf("force emit: %v", err)
	}
}

func TestEmitInterfacesModule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Emit(ctx, widgetService(), Options{
		OutDir:           dir,
		InterfacesModule: "acme.clients",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	client, err := os.ReadFile(filepath.Join(dir, "acme", "clients", "widgetServiceClient.ts"))
	if err != nil {
		t.Fatalf("read client: %v", err)
	}
	// Mappers stay under the service namespace; the client import walks over.
	mustContain(t, string(client), "from '../../widget-store/mappers';")
	if _, err := os.Stat(filepath.Join(dir, "widget-store", "mappers.ts")); err != nil {
		t.Fatalf("mapper location: %v", err)
	}
}

func TestEmitDeterministic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	read := func(dir string) map[string][]byte {
		out := map[string][]byte{}
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			rel, _ := filepath.Rel(dir, path)
			data, rerr := os.ReadFile(path)
			if rerr != nil {
				return rerr
			}
			out[filepath.ToSlash(rel)] = data
			return nil
		})
		return out
	}

	dirA, dirB := t.TempDir(), t.TempDir()
	if _, err := Emit(ctx, widgetService(), Options{OutDir: dirA}); err != nil {
		t.Fatalf("emit a: %v", err)
	}
	if _, err := Emit(ctx, widgetService(), Options{OutDir: dirB}); err != nil {
		t.Fatalf("emit b: %v", err)
	}

	a, b := read(dirA), read(dirB)
	if len(a) != len(b) {
		t.Fatalf("file counts differ: %d vs %d", len(a), len(b))
	}
	for rel, data := range a {
		if !bytes.Equal(data, b[rel]) {
			t.Errorf("artifact %s differs between runs", rel)
		}
	}
}

func TestEmitValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if _, err := Emit(ctx, nil, Options{OutDir: t.TempDir()}); err == nil {
		t.Errorf("expected error for nil service")
	}
	if _, err := Emit(ctx, widgetService(), Options{}); err == nil {
		t.Errorf("expected error for missing out dir")
	}
}

func TestRelativeImport(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to []string
		want     string
	}{
		{[]string{"widget-store"}, []string{"widget-store"}, "./mappers"},
		{[]string{"acme", "clients"}, []string{"widget-store"}, "../../widget-store/mappers"},
		{[]string{"acme", "clients"}, []string{"acme", "models"}, "../models/mappers"},
		{[]string{"acme"}, []string{"acme", "models"}, "./models/mappers"},
	}
	for _, tc := range cases {
		if got := relativeImport(tc.from, tc.to); got != tc.want {
			t.Errorf("relativeImport(%v, %v) = %q, want %q", tc.from, tc.to, got, tc.want)
		}
	}
}
