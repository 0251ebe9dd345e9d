package sshconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	configurationDirectoryPermissionsConstant = 0o700
	configurationFilePermissionsConstant      = 0o600
	storePathRequiredMessageConstant          = "ssh configuration path required"
	storeFileSystemRequiredMessageConstant    = "ssh configuration file system required"
	storeReadErrorTemplateConstant            = "read ssh configuration %s: %w"
	storeDirectoryErrorTemplateConstant       = "create ssh configuration directory %s: %w"
	storeWriteErrorTemplateConstant           = "write ssh configuration %s: %w"
)

// ErrStorePathRequired indicates the store was created without a path.
var ErrStorePathRequired = errors.New(storePathRequiredMessageConstant)

// ErrStoreFileSystemRequired indicates the store was created without a file system.
var ErrStoreFileSystemRequired = errors.New(storeFileSystemRequiredMessageConstant)

// Store loads and saves one SSH client configuration file.
type Store struct {
	fileSystem afero.Fs
	path       string
}

// NewStore constructs a Store for the file at path.
func NewStore(fileSystem afero.Fs, path string) (*Store, error) {
	if fileSystem == nil {
		return nil, ErrStoreFileSystemRequired
	}
	if len(strings.TrimSpace(path)) == 0 {
		return nil, ErrStorePathRequired
	}
	return &Store{fileSystem: fileSystem, path: path}, nil
}

// Path returns the configuration file location.
func (store *Store) Path() string {
	return store.path
}

// Load parses the configuration file; a missing file yields an empty Document.
func (store *Store) Load() (Document, error) {
	content, readError := afero.ReadFile(store.fileSystem, store.path)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf(storeReadErrorTemplateConstant, store.path, readError)
	}
	return Parse(string(content)), nil
}

// Save writes the document, creating the parent directory when needed.
func (store *Store) Save(document Document) error {
	parentDirectory := filepath.Dir(store.path)
	if mkdirError := store.fileSystem.MkdirAll(parentDirectory, configurationDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(storeDirectoryErrorTemplateConstant, parentDirectory, mkdirError)
	}
	if writeError := afero.WriteFile(store.fileSystem, store.path, []byte(document.String()), configurationFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(storeWriteErrorTemplateConstant, store.path, writeError)
	}
	return nil
}
