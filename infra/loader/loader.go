package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/resplan/core/model"
)

// ErrUnsupportedFormat is returned for documents that are neither JSON nor
// YAML.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Paths locates the three input documents. Holidays is optional.
type Paths struct {
	Projects  string
	Resources string
	Holidays  string
}

// Load reads every document named in p.
func Load(p Paths) (model.Dataset, error) {
	var ds model.Dataset
	var err error
	if ds.Projects, err = LoadProjects(p.Projects); err != nil {
		return ds, err
	}
	if ds.Resources, err = LoadResources(p.Resources); err != nil {
		return ds, err
	}
	if p.Holidays != "" {
		if ds.Holidays, err = LoadHolidays(p.Holidays); err != nil {
			return ds, err
		}
	}
	return ds, nil
}

// LoadProjects reads a projects document from a JSON or YAML file.
func LoadProjects(path string) ([]model.Project, error) {
	return loadFile(path, DecodeProjects)
}

// LoadResources reads a resources document from a JSON or YAML file.
func LoadResources(path string) ([]model.Resource, error) {
	return loadFile(path, DecodeResources)
}

// LoadHolidays reads a holidays document from a JSON or YAML file.
func LoadHolidays(path string) ([]model.Holiday, error) {
	return loadFile(path, DecodeHolidays)
}

// DecodeProjects reads a projects document from r.
func DecodeProjects(r io.Reader, format string) ([]model.Project, error) {
	var doc projectsDoc
	if err := decode(r, format, &doc); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	out := make([]model.Project, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		out = append(out, p.toModel())
	}
	return out, nil
}

// DecodeResources reads a resources document from r. A missing capacity
// defaults to model.DefaultCapacity.
func DecodeResources(r io.Reader, format string) ([]model.Resource, error) {
	var doc resourcesDoc
	if err := decode(r, format, &doc); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	out := make([]model.Resource, 0, len(doc.Resources))
	for _, dto := range doc.Resources {
		res, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// DecodeHolidays reads a holidays document from r.
func DecodeHolidays(r io.Reader, format string) ([]model.Holiday, error) {
	var doc holidaysDoc
	if err := decode(r, format, &doc); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	out := make([]model.Holiday, 0, len(doc.Holidays))
	for _, h := range doc.Holidays {
		out = append(out, model.Holiday{Date: h.Date.time(), Name: h.Name})
	}
	return out, nil
}

func loadFile[T any](path string, dec func(io.Reader, string) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := dec(f, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func decode(r io.Reader, format string, v any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}
