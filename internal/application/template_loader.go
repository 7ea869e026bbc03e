package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
	"github.com/ahrav/go-compare/internal/scoring"
)

// TemplateFile is the on-disk YAML representation of a criteria template.
// The template fields are inlined next to a schema version:
//
//	version: "1.0.0"
//	name: Laptops
//	criteria:
//	  - id: price
//	    name: Price
//	    type: price
//	    weight: 60
//	    is_visible: true
type TemplateFile struct {
	// Version specifies the template schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Template carries the name, description, and criteria.
	Template domain.Template `yaml:",inline"`
}

// TemplateLoader provides YAML parsing, validation, and caching for criteria
// templates.
// Use TemplateLoader to load templates from files or readers while
// benefiting from SHA256-based caching and full criteria validation.
type TemplateLoader struct {
	// validator checks the file envelope; criteria are checked by the
	// scoring package's validation.
	validator *validator.Validate
	// cache stores parsed templates indexed by the SHA256 hash of their
	// normalized YAML.
	cache map[string]domain.Template
	// cacheMu guards cache.
	cacheMu sync.RWMutex
	// sf prevents duplicate parsing when multiple goroutines request the
	// same template simultaneously.
	sf singleflight.Group
}

// NewTemplateLoader creates a loader with an empty cache.
// It returns an error if validator registration fails.
func NewTemplateLoader() (*TemplateLoader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &TemplateLoader{
		validator: v,
		cache:     make(map[string]domain.Template),
	}, nil
}

// load is the common implementation behind LoadFromFile and LoadFromReader.
// The returned template is a private copy; mutating it does not affect the
// cache.
func (tl *TemplateLoader) load(data []byte) (domain.Template, error) {
	file, err := tl.parseYAML(data)
	if err != nil {
		return domain.Template{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized file so formatting differences share a cache entry.
	hash, err := tl.calculateHash(file)
	if err != nil {
		return domain.Template{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := tl.sf.Do(hash, func() (any, error) {
		if t, ok := tl.getCached(hash); ok {
			return t, nil
		}

		if err := tl.validator.Struct(file); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		if err := scoring.ValidateTemplate(file.Template); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		tl.store(hash, file.Template)
		return file.Template, nil
	})
	if err != nil {
		return domain.Template{}, err
	}

	t := v.(domain.Template)
	t.Criteria = domain.CloneCriteria(t.Criteria)
	return t, nil
}

// LoadFromFile loads and validates a template from a YAML file.
func (tl *TemplateLoader) LoadFromFile(ctx context.Context, path string) (domain.Template, error) {
	if err := ctx.Err(); err != nil {
		return domain.Template{}, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domain.Template{}, fmt.Errorf("failed to read file: %w", err)
	}
	return tl.load(data)
}

// LoadFromReader loads and validates a template from r.
func (tl *TemplateLoader) LoadFromReader(ctx context.Context, r io.Reader) (domain.Template, error) {
	if err := ctx.Err(); err != nil {
		return domain.Template{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Template{}, fmt.Errorf("failed to read data: %w", err)
	}
	return tl.load(data)
}

// LoadDir loads every *.yaml and *.yml file in dir, in name order, and saves
// the templates into store. It stops at the first invalid file.
func (tl *TemplateLoader) LoadDir(ctx context.Context, dir string, store ports.TemplateStore) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	names := make([]string, 0, len(paths))
	for _, path := range paths {
		t, err := tl.LoadFromFile(ctx, path)
		if err != nil {
			return names, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if err := store.Save(ctx, t); err != nil {
			return names, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		names = append(names, t.Name)
	}
	return names, nil
}

// parseYAML decodes data in strict mode so misspelled keys are reported
// instead of silently ignored.
func (tl *TemplateLoader) parseYAML(data []byte) (*TemplateFile, error) {
	var file TemplateFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &file, nil
}

// calculateHash re-encodes the parsed file and hashes the result.
func (tl *TemplateLoader) calculateHash(file *TemplateFile) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(file); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

func (tl *TemplateLoader) getCached(hash string) (domain.Template, bool) {
	tl.cacheMu.RLock()
	defer tl.cacheMu.RUnlock()
	t, ok := tl.cache[hash]
	return t, ok
}

func (tl *TemplateLoader) store(hash string, t domain.Template) {
	tl.cacheMu.Lock()
	defer tl.cacheMu.Unlock()
	tl.cache[hash] = t
}

// CacheSize returns the number of distinct templates parsed so far.
func (tl *TemplateLoader) CacheSize() int {
	tl.cacheMu.RLock()
	defer tl.cacheMu.RUnlock()
	return len(tl.cache)
}

// ClearCache drops all cached templates.
func (tl *TemplateLoader) ClearCache() {
	tl.cacheMu.Lock()
	defer tl.cacheMu.Unlock()
	tl.cache = make(map[string]domain.Template)
}
