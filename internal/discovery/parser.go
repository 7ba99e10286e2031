package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"vmx/internal/domain"
)

// suiteFile is the on-disk layout of a *.vmx.yaml file
type suiteFile struct {
	Env     map[string]string `yaml:"env"`
	Dir     string            `yaml:"dir"`
	Classes []classEntry      `yaml:"classes"`
}

type classEntry struct {
	Name         string        `yaml:"name"`
	Constructors int           `yaml:"constructors"`
	Config       domain.Config `yaml:"config"`
	Methods      []methodEntry `yaml:"methods"`
}

type methodEntry struct {
	Name   string            `yaml:"name"`
	Config domain.Config     `yaml:"config"`
	Run    []string          `yaml:"run"`
	Skip   string            `yaml:"skip"`
	Env    map[string]string `yaml:"env"`
	Dir    string            `yaml:"dir"`
}

// Parser reads suite files into test classes
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads the classes declared in a suite file
func (p *Parser) ParseFile(filePath string) ([]domain.TestClass, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	classes, err := p.Parse(content, filepath.Dir(filePath))
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filePath, err)
	}
	for i := range classes {
		classes[i].Source = filePath
	}
	return classes, nil
}

// ParseFiles reads every suite file, stopping at the first error
func (p *Parser) ParseFiles(files []string) ([]domain.TestClass, error) {
	var classes []domain.TestClass
	for _, file := range files {
		parsed, err := p.ParseFile(file)
		if err != nil {
			return nil, err
		}
		classes = append(classes, parsed...)
	}
	return classes, nil
}

// Parse decodes suite content. Relative directories resolve against baseDir.
func (p *Parser) Parse(content []byte, baseDir string) ([]domain.TestClass, error) {
	var suite suiteFile
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	suiteDir := resolveDir(baseDir, suite.Dir)
	suiteEnv := environ(suite.Env)

	classes := make([]domain.TestClass, 0, len(suite.Classes))
	for i, entry := range suite.Classes {
		if entry.Name == "" {
			return nil, fmt.Errorf("class #%d has no name", i+1)
		}
		if entry.Constructors < 0 {
			return nil, fmt.Errorf("class %s: constructors must not be negative", entry.Name)
		}
		class := domain.TestClass{
			Name:         entry.Name,
			Constructors: entry.Constructors,
			Config:       entry.Config,
		}

		for _, m := range entry.Methods {
			method := domain.TestMethod{
				Name:    m.Name,
				Config:  m.Config,
				Skip:    m.Skip,
				Command: m.Run,
				Dir:     suiteDir,
				Env:     append(append([]string(nil), suiteEnv...), environ(m.Env)...),
			}
			if m.Dir != "" {
				method.Dir = resolveDir(suiteDir, m.Dir)
			}
			class.Methods = append(class.Methods, method)
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func resolveDir(base, dir string) string {
	if dir == "" {
		return base
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// environ converts a map into sorted KEY=value pairs
func environ(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return pairs
}
