package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dhamidi/ktcst/format"
	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/iancoleman/strcase"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"
)

var log = commonlog.GetLogger("ktcst.project")

// ConfigFile is the name of the project configuration file.
const ConfigFile = ".ktcst.yaml"

// Config is the content of a .ktcst.yaml file.
type Config struct {
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Format    string   `yaml:"format"`
	Color     string   `yaml:"color"` // auto, always or never
	Jobs      int      `yaml:"jobs"`
	Verbosity int      `yaml:"verbosity"`
}

func DefaultConfig() Config {
	return Config{
		Include: []string{"**/*.kt", "**/*.kts"},
		Exclude: []string{"**/build/**", "**/.gradle/**"},
		Format:  "sexp",
		Color:   "auto",
	}
}

func (c Config) Validate() error {
	for _, pattern := range slices.Concat(c.Include, c.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob %q", pattern)
		}
	}
	if !slices.Contains(format.Names(), c.Format) {
		return fmt.Errorf("unknown format %q", c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, not %q", c.Color)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative")
	}
	return nil
}

// Project is a directory of Kotlin sources.
type Project struct {
	RootDir    string
	ConfigPath string // empty when the defaults are used
	Config     Config
}

// Load reads the project in the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom reads rootDir/.ktcst.yaml. A missing file yields the default
// configuration.
func LoadFrom(rootDir string) (*Project, error) {
	proj := &Project{RootDir: rootDir, Config: DefaultConfig()}

	path := filepath.Join(rootDir, ConfigFile)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugf("no %s in %s, using defaults", ConfigFile, rootDir)
		return proj, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	proj.ConfigPath = path
	proj.Config = cfg
	return proj, nil
}

// ParseConfig decodes a configuration on top of the defaults. Unknown
// keys are errors.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Files returns the included source files under the root, sorted.
func (p *Project) Files() ([]string, error) {
	fsys := os.DirFS(p.RootDir)
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range p.Config.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || p.excluded(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	for i, f := range files {
		files[i] = filepath.Join(p.RootDir, filepath.FromSlash(f))
	}
	return files, nil
}

func (p *Project) excluded(name string) bool {
	for _, pattern := range p.Config.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Includes reports whether path, relative to the root, is a project file.
func (p *Project) Includes(path string) bool {
	rel, err := filepath.Rel(p.RootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if p.excluded(rel) {
		return false
	}
	for _, pattern := range p.Config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ExpandPaths turns command line arguments into file paths. Existing
// files are kept as given and everything else is a glob. Duplicates are
// dropped.
func ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no such file", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return paths, nil
}

// Entrypoint is a top-level main function.
type Entrypoint struct {
	File      string
	Package   string
	ClassName string // the JVM facade class, e.g. "MainKt"
	FullName  string // e.g. "com.example.MainKt"
	Slug      string // kebab-case file name, e.g. "drop-zone-app"
}

// FindEntrypoints parses the project files and returns those declaring
// a top-level main function. Files with syntax errors are still searched.
func (p *Project) FindEntrypoints(ctx context.Context) ([]Entrypoint, error) {
	paths, err := p.Files()
	if err != nil {
		return nil, err
	}
	files, err := parser.ParseFiles(ctx, paths, p.Config.Jobs)
	if err != nil {
		return nil, err
	}

	var entrypoints []Entrypoint
	for _, f := range files {
		if ep, ok := findEntrypoint(f); ok {
			entrypoints = append(entrypoints, ep)
		}
	}
	return entrypoints, nil
}

func findEntrypoint(f *parser.File) (Entrypoint, bool) {
	if f.Tree == nil || !hasMainFunction(f.Tree) {
		return Entrypoint{}, false
	}

	base := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	className := facadeClassName(base)
	pkg := PackageName(f.Tree)
	fullName := className
	if pkg != "" {
		fullName = pkg + "." + className
	}
	return Entrypoint{
		File:      f.Path,
		Package:   pkg,
		ClassName: className,
		FullName:  fullName,
		Slug:      strcase.ToKebab(base),
	}, true
}

func hasMainFunction(root *parser.Node) bool {
	for _, stmt := range root.ChildrenByField(parser.FieldStatements) {
		if stmt.Kind != parser.KindFunctionDeclaration {
			continue
		}
		name := stmt.ChildByField(parser.FieldIdentifier)
		if name == nil || name.TokenLiteral() != "main" {
			continue
		}
		if isExtension(stmt) {
			continue
		}
		return true
	}
	return false
}

// isExtension reports whether a receiver type precedes the function name.
func isExtension(fn *parser.Node) bool {
	for _, c := range fn.Children {
		if c.Field == parser.FieldIdentifier {
			return false
		}
		switch c.Kind {
		case parser.KindUserType, parser.KindNullableType, parser.KindParenthesizedType:
			return true
		}
	}
	return false
}

// PackageName returns the dotted name of the package header, or "".
func PackageName(root *parser.Node) string {
	header := root.FirstChildOfKind(parser.KindPackageHeader)
	if header == nil {
		return ""
	}
	ident := header.FirstChildOfKind(parser.KindIdentifier)
	if ident == nil {
		return ""
	}
	var parts []string
	for _, c := range ident.ChildrenOfKind(parser.KindSimpleIdentifier) {
		parts = append(parts, c.TokenLiteral())
	}
	return strings.Join(parts, ".")
}

// facadeClassName derives the class the compiler generates for the
// top-level declarations of a file: "main" becomes "MainKt".
func facadeClassName(base string) string {
	var sb strings.Builder
	for i, r := range base {
		switch {
		case i == 0:
			sb.WriteRune(unicode.ToUpper(r))
		case r == '-' || r == '.' || r == ' ':
			sb.WriteRune('_')
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteString("Kt")
	return sb.String()
}
