package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/plmview/internal/config"
	"github.com/philipparndt/plmview/pkg/assembly"
	"github.com/philipparndt/plmview/pkg/converter"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/stl"
)

// ErrUnsupported is returned for paths that are neither STL, assembly nor
// convertible
var ErrUnsupported = errors.New("unsupported file type")

// Kind tells how a source is turned into a scene
type Kind int

const (
	KindSTL Kind = iota
	KindAssembly
	KindConverted
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindSTL:
		return "stl"
	case KindAssembly:
		return "assembly"
	case KindConverted:
		return "converted"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// FileFetcher reads STL resources from the local file system
type FileFetcher struct{}

// Fetch implements scene.Fetcher
func (FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(location)
}

// HTTPFetcher downloads STL resources. A nil Client uses http.DefaultClient.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements scene.Fetcher
func (f HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", location, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Source is a resolved input file ready to build viewers from
type Source struct {
	Path         string
	Kind         Kind
	Options      scene.Options
	Fetcher      scene.Fetcher
	Dependencies []string

	temp []string
}

// IsRemote reports whether path is an http(s) URL
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// IsAssembly reports whether path names an assembly description
func IsAssembly(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".arb" || ext == ".json"
}

// Open resolves path into viewer options. STL files and URLs are fetched
// when the viewer loads; assemblies and convertible CAD files are read now.
func Open(ctx context.Context, path string, cfg config.Config) (*Source, error) {
	opts := cfg.Options()

	if IsRemote(path) {
		opts.STLFile = path
		return &Source{Path: path, Kind: KindRemote, Options: opts, Fetcher: HTTPFetcher{}}, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	conv := cfg.Converter(filepath.Dir(absPath))
	src := &Source{Path: absPath, Options: opts, Fetcher: FileFetcher{}}

	switch {
	case strings.ToLower(filepath.Ext(absPath)) == ".stl":
		src.Kind = KindSTL
		src.Options.STLFile = absPath
		src.Dependencies = []string{absPath}

	case IsAssembly(absPath):
		src.Kind = KindAssembly
		if err := src.openAssembly(ctx, conv); err != nil {
			src.Close()
			return nil, err
		}

	case conv.Supports(absPath):
		src.Kind = KindConverted
		log.Printf("Converting %s", absPath)
		stlFile, err := conv.ConvertToTemp(ctx, absPath)
		if err != nil {
			return nil, err
		}
		src.temp = append(src.temp, stlFile)
		src.Options.STLFile = stlFile
		if src.Dependencies, err = conv.Dependencies(absPath); err != nil {
			log.Printf("Warning: could not resolve dependencies of %s: %v", absPath, err)
			src.Dependencies = []string{absPath}
		}

	default:
		return nil, fmt.Errorf("%w: %s (expected .stl, .arb, .json or one of %v)",
			ErrUnsupported, filepath.Ext(absPath), conv.Extensions())
	}

	return src, nil
}

func (s *Source) openAssembly(ctx context.Context, conv *converter.Converter) error {
	root, err := assembly.Load(s.Path)
	if err != nil {
		return err
	}

	s.Dependencies = append([]string{s.Path}, root.Geometries()...)
	built, err := assembly.Build(root, s.meshLoader(ctx, conv))
	if err != nil {
		return err
	}
	s.Options = built.Options(s.Options)
	log.Printf("Loaded assembly %s: %d parts, %d occurrences", root.Name, len(built.Parts), root.Occurrences())
	return nil
}

// meshLoader reads STL geometry and converts any other supported format
func (s *Source) meshLoader(ctx context.Context, conv *converter.Converter) assembly.MeshLoader {
	return func(ref string) (*stl.Model, error) {
		if strings.ToLower(filepath.Ext(ref)) == ".stl" || !conv.Supports(ref) {
			return assembly.FileLoader(ref)
		}
		stlFile, err := conv.ConvertToTemp(ctx, ref)
		if err != nil {
			return nil, err
		}
		s.temp = append(s.temp, stlFile)
		return assembly.FileLoader(stlFile)
	}
}

// NewViewer builds and loads a viewer for the source. Assembly sources own
// their scene graph, so open the source again for a second viewer.
func (s *Source) NewViewer(ctx context.Context) (*scene.Viewer, error) {
	v := scene.New(s.Options)
	if err := v.Load(ctx, s.Fetcher); err != nil {
		return v, err
	}
	return v, nil
}

// Close removes temporary conversion output
func (s *Source) Close() {
	for _, file := range s.temp {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to remove %s: %v", file, err)
		}
	}
	s.temp = nil
}
