// Package tsemitter renders the TypeScript client and mapper artifacts for a
// service IR. Generation is a pure function of (IR, options): one mapper
// module per service, one client module per interface, planned in a
// deterministic order.
package tsemitter

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apiweld/sdkgen/internal/binding"
	"github.com/apiweld/sdkgen/internal/ir"
	"github.com/apiweld/sdkgen/internal/naming"
)

// Options controls how the emitter renders and writes artifacts.
type Options struct {
	OutDir string // required; output root for generated files
	// InterfacesModule overrides the namespace the client classes are
	// placed under; the mapper module stays under the service namespace.
	InterfacesModule string
	// MagicComments are raw leading comment lines prepended to every
	// generated file.
	MagicComments []string
	// FileIncludes are module names imported at the top of each client
	// artifact.
	FileIncludes []string
	// Casters maps a primitive or named type to a custom caster identifier,
	// overriding the default cast table in both conversion directions.
	Casters map[string]string
	Force   bool // overwrite existing files
	DryRun  bool // don't write, only plan
	Verbose bool
	Logger  *zap.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files for the generation pass.
type Result struct {
	ServiceName string
	Planned     []PlannedFile
}

// Emit renders the client and mapper artifacts for the given service.
func Emit(ctx context.Context, svc *ir.Service, opts Options) (*Result, error) {
	_ = ctx
	if svc == nil {
		return nil, fmt.Errorf("tsemitter: nil Service")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// One resolver per generation pass, threaded into every render call.
	res := binding.NewResolver(svc)

	mapperSegs := namespaceSegments(svc.Name)
	clientSegs := mapperSegs
	if strings.TrimSpace(opts.InterfacesModule) != "" {
		clientSegs = namespaceSegments(opts.InterfacesModule)
	}
	importSpec := relativeImport(clientSegs, mapperSegs)

	files := map[string][]byte{}
	mapperRel := filepath.Join(filepath.Join(mapperSegs...), "mappers.ts")
	files[mapperRel] = []byte(renderMapperModule(svc, opts))

	for _, iface := range svc.Interfaces {
		rel := filepath.Join(filepath.Join(clientSegs...), naming.LowerCamel(iface.Name)+"Client.ts")
		files[rel] = []byte(renderClientModule(svc, iface, res, opts, importSpec))
	}

	// Plan in deterministic order
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
		logger.Debug("planned artifact", zap.String("path", rel), zap.Int("bytes", len(files[rel])))
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{ServiceName: svc.Name, Planned: planned}, nil
}

// namespaceSegments splits a namespace into path segments. Both dotted and
// slashed namespaces are accepted.
func namespaceSegments(ns string) []string {
	raw := strings.FieldsFunc(ns, func(r rune) bool { return r == '.' || r == '/' })
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// relativeImport computes the module specifier that imports the mapper
// module from the client directory.
func relativeImport(from, to []string) string {
	common := 0
	for common < len(from) && common < len(to) && from[common] == to[common] {
		common++
	}
	up := strings.Repeat("../", len(from)-common)
	down := path.Join(append(append([]string(nil), to[common:]...), "mappers")...)
	if up == "" {
		return "./" + down
	}
	return up + down
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	// Pre-flight: if directory exists and not empty and not force, error.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("tsemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
