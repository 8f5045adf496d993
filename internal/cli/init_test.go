package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesSampleConfig(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sdkgen.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", target})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(data)
	for _, want := range []string{"# sdkgen configuration", "# input:", "# out:", "# interfacesModule:", "# casters:"} {
		if !strings.Contains(content, want) {
			t.Errorf("sample config missing %q", want)
		}
	}
}

func TestInitRefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sdkgen.yaml")
	if err := os.WriteFile(target, []byte("existing\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", target})
	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}

	// --force overwrites.
	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", target, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("force execute: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "# sdkgen configuration") {
		t.Errorf("file should be replaced by the sample config")
	}
}
