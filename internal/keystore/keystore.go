// Package keystore persists the OpenAI API key on the local machine.
package keystore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrNoAPIKey = errors.New("no API key is configured")

const EnvAPIKey = "OPENAI_API_KEY"

type credentials struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
}

// FileStore keeps the key in a YAML file readable only by the owner.
// A non-empty OPENAI_API_KEY environment variable takes precedence over the file.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	getenv func(string) string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		getenv: os.Getenv,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) GetAPIKey() (string, error) {
	if key := strings.TrimSpace(s.getenv(EnvAPIKey)); key != "" {
		return key, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	creds, err := s.read()
	if err != nil {
		return "", err
	}
	if creds.OpenAIAPIKey == "" {
		return "", ErrNoAPIKey
	}
	return creds.OpenAIAPIKey, nil
}

func (s *FileStore) HasAPIKey() bool {
	_, err := s.GetAPIKey()
	return err == nil
}

func (s *FileStore) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("empty API key: %w", ErrNoAPIKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(s.path), err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile(%s) > %w", s.path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	// an existing file keeps its mode on open
	if err := file.Chmod(0600); err != nil {
		return fmt.Errorf("file.Chmod(%s) > %w", s.path, err)
	}

	if err := yaml.NewEncoder(file).Encode(credentials{OpenAIAPIKey: key}); err != nil {
		return fmt.Errorf("yaml.NewEncoder().Encode() > %w", err)
	}
	return nil
}

// Clear removes the stored key. The environment variable is not affected.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove(%s) > %w", s.path, err)
	}
	return nil
}

func (s *FileStore) read() (credentials, error) {
	var creds credentials

	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return creds, ErrNoAPIKey
	}
	if err != nil {
		return creds, fmt.Errorf("os.Open(%s) > %w", s.path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&creds); err != nil {
		if errors.Is(err, io.EOF) {
			return creds, ErrNoAPIKey
		}
		return creds, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	creds.OpenAIAPIKey = strings.TrimSpace(creds.OpenAIAPIKey)
	return creds, nil
}

// Mask hides everything but the last four characters of a key.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
