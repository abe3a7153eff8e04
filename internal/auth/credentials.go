package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// keyDir is the directory under the system temp dir holding the key file
	keyDir = "devtoy"
	// keyFile is the file name of the stored API key
	keyFile = "apikey.txt"

	promptLabel = "dev.to API key: "
)

// ErrNotFound is returned by Read when no API key has been stored yet
var ErrNotFound = errors.New("api key not found")

// DefaultPath returns the well-known per-machine location of the API key
func DefaultPath() string {
	return filepath.Join(os.TempDir(), keyDir, keyFile)
}

// Store manages the lifecycle of the single locally cached dev.to API key
type Store struct {
	Path     string
	Prompter Prompter
}

// NewStore creates a store rooted at path, falling back to DefaultPath when path is empty
func NewStore(path string, prompter Prompter) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{Path: path, Prompter: prompter}
}

// Read returns the stored API key exactly as written
func (s *Store) Read() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read api key from %s: %w", s.Path, err)
	}
	return string(data), nil
}

// Write creates or replaces the key file with secret
func (s *Store) Write(secret string) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(s.Path, []byte(secret), 0600); err != nil {
		return fmt.Errorf("failed to write api key to %s: %w", s.Path, err)
	}

	return nil
}

// Prompt asks the operator for the API key without echoing it
func (s *Store) Prompt() (string, error) {
	p := s.Prompter
	if p == nil {
		p = StdinPrompter()
	}
	secret, err := p.Prompt(promptLabel)
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return secret, nil
}

// Obtain returns the stored key, prompting for and persisting one if none is stored.
// Other components acquire the key only through Obtain.
func (s *Store) Obtain() (string, error) {
	secret, err := s.Read()
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	secret, err = s.Prompt()
	if err != nil {
		return "", err
	}
	if err := s.Write(secret); err != nil {
		return "", err
	}
	return secret, nil
}

// Destroy zero-fills the key file over its full length and removes it.
// A missing file is not an error. Every other failure is reported, but the
// unlink is attempted even when the overwrite fails.
func (s *Store) Destroy() error {
	var errs []error

	f, err := os.OpenFile(s.Path, os.O_WRONLY, 0)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		errs = append(errs, fmt.Errorf("failed to open %s: %w", s.Path, err))
	default:
		if err := zeroFill(f); err != nil {
			errs = append(errs, fmt.Errorf("failed to overwrite %s: %w", s.Path, err))
		}
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", s.Path, err))
		}
	}

	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("failed to remove %s: %w", s.Path, err))
	}

	return errors.Join(errs...)
}

func zeroFill(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	if _, err := f.WriteAt(make([]byte, info.Size()), 0); err != nil {
		return err
	}
	return f.Sync()
}

// Mask hides all but the first and last four characters of key
func Mask(key string) string {
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "****"
}
