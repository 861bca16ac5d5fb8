package result

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLRepository stores each result as a YAML file under a directory, grouped by month.
type YAMLRepository struct {
	directory string
}

func NewYAMLRepository(directory string) *YAMLRepository {
	return &YAMLRepository{directory: directory}
}

func (r *YAMLRepository) Save(_ context.Context, result BatchResult) error {
	if result.ID == "" {
		return fmt.Errorf("result has no id")
	}

	dir := filepath.Join(r.directory, result.CompletedAt.Format("2006-01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.yml", result.CompletedAt.Format("20060102T150405"), result.ID))
	if err := writeYamlFile(path, result); err != nil {
		return fmt.Errorf("writeYamlFile(%s) > %w", path, err)
	}
	return nil
}

func (r *YAMLRepository) FindAll(_ context.Context) ([]BatchResult, error) {
	var results []BatchResult
	err := filepath.WalkDir(r.directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == r.directory {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); !strings.EqualFold(ext, ".yml") && !strings.EqualFold(ext, ".yaml") {
			return nil
		}

		result, err := readYamlFile[BatchResult](path)
		if err != nil {
			return fmt.Errorf("readYamlFile(%s) > %w", path, err)
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filepath.WalkDir(%s) > %w", r.directory, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CompletedAt.Equal(results[j].CompletedAt) {
			return results[i].ID < results[j].ID
		}
		return results[i].CompletedAt.Before(results[j].CompletedAt)
	})
	return results, nil
}

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil {
		return result, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	return result, nil
}

func writeYamlFile[T any](path string, data T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("yaml.NewEncoder().Encode() > %w", err)
	}
	return encoder.Close()
}
