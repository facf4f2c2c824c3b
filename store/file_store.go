package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/types"
)

const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatTOML     = "toml"
	checksumSuffix = ".checksum"
	usersFileName  = "users"
)

// FileRecordStore implements RecordStore and UserStore over one file per
// collection in a data directory. It supports JSON, YAML, and TOML formats,
// verifies a SHA-256 checksum sidecar on load, writes atomically via a
// temporary file, and serializes writers with a per-collection file lock
// held for the whole load-mutate-save cycle.
//
// All data I/O goes through the afero filesystem; the lock files live on
// the real filesystem because flock needs OS file descriptors.
type FileRecordStore struct {
	fs     afero.Fs
	dir    string
	format string
	locks  map[string]*flock.Flock
}

// NewFileRecordStore creates a store rooted at dir. Format must be one of
// json, yaml, or toml. The directory is created if missing.
func NewFileRecordStore(fs afero.Fs, dir, format string) (*FileRecordStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	formatLower := strings.ToLower(format)
	switch formatLower {
	case formatJSON, formatYAML, formatTOML:
	default:
		return nil, fmt.Errorf("unsupported data format: %s (supported: json, yaml, toml)", format)
	}
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, types.StoreUnavailable(fmt.Sprintf("failed to create data directory %s", dir), err)
	}

	s := &FileRecordStore{
		fs:     fs,
		dir:    dir,
		format: formatLower,
		locks:  make(map[string]*flock.Flock),
	}
	for _, c := range Collections {
		s.locks[string(c)] = flock.New(filepath.Join(dir, string(c)+".lock"))
	}
	s.locks[usersFileName] = flock.New(filepath.Join(dir, usersFileName+".lock"))
	return s, nil
}

func (s *FileRecordStore) dataPath(name string) string {
	return filepath.Join(s.dir, name+"."+s.format)
}

func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// readCollection reads and decodes one collection file into out. A missing
// file is not an error; out is left untouched and ok is false.
func (s *FileRecordStore) readCollection(name string, out interface{}) (ok bool, err error) {
	path := s.dataPath(name)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, types.StoreUnavailable(fmt.Sprintf("failed to read data file %s", path), err)
	}

	checksumPath := path + checksumSuffix
	if expected, readErr := afero.ReadFile(s.fs, checksumPath); readErr == nil {
		if calculateChecksum(data) != strings.TrimSpace(string(expected)) {
			return false, types.StoreCorrupt(fmt.Sprintf("checksum mismatch for %s", path), nil)
		}
	} else if !os.IsNotExist(readErr) {
		return false, types.StoreUnavailable(fmt.Sprintf("failed to read checksum file %s", checksumPath), readErr)
	}
	// A data file without a checksum sidecar predates checksumming; the
	// next save creates one.

	if len(data) == 0 {
		return false, nil
	}

	switch s.format {
	case formatJSON:
		err = json.Unmarshal(data, out)
	case formatYAML:
		err = yaml.Unmarshal(data, out)
	case formatTOML:
		err = toml.Unmarshal(data, out)
	}
	if err != nil {
		return false, types.StoreCorrupt(fmt.Sprintf("failed to decode %s as %s", path, s.format), err)
	}
	return true, nil
}

// writeCollection encodes v and atomically replaces the collection file and
// its checksum sidecar.
func (s *FileRecordStore) writeCollection(name string, v interface{}) error {
	var marshaled []byte
	var err error
	switch s.format {
	case formatJSON:
		marshaled, err = json.MarshalIndent(v, "", "  ")
	case formatYAML:
		marshaled, err = yaml.Marshal(v)
	case formatTOML:
		buf := new(bytes.Buffer)
		if encodeErr := toml.NewEncoder(buf).Encode(v); encodeErr != nil {
			err = encodeErr
		} else {
			marshaled = buf.Bytes()
		}
	}
	if err != nil {
		return types.StoreUnavailable(fmt.Sprintf("failed to marshal %s collection to %s", name, s.format), err)
	}

	path := s.dataPath(name)
	checksumPath := path + checksumSuffix
	tmpPath := path + ".tmp"
	tmpChecksumPath := checksumPath + ".tmp"
	defer func() { _ = s.fs.Remove(tmpPath) }()
	defer func() { _ = s.fs.Remove(tmpChecksumPath) }()

	if err := afero.WriteFile(s.fs, tmpPath, marshaled, 0o644); err != nil {
		return types.StoreUnavailable(fmt.Sprintf("failed to write temporary data file %s", tmpPath), err)
	}
	if err := afero.WriteFile(s.fs, tmpChecksumPath, []byte(calculateChecksum(marshaled)), 0o644); err != nil {
		return types.StoreUnavailable(fmt.Sprintf("failed to write temporary checksum file %s", tmpChecksumPath), err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		return types.StoreUnavailable(fmt.Sprintf("failed to replace data file %s", path), err)
	}
	if err := s.fs.Rename(tmpChecksumPath, checksumPath); err != nil {
		return types.StoreUnavailable(fmt.Sprintf("data file %s updated but checksum file %s was not", path, checksumPath), err)
	}
	return nil
}

func (s *FileRecordStore) lock(name string) (*flock.Flock, error) {
	flk, ok := s.locks[name]
	if !ok {
		return nil, types.StoreUnavailable(fmt.Sprintf("unknown collection %q", name), nil)
	}
	if err := flk.Lock(); err != nil {
		return nil, types.StoreUnavailable(fmt.Sprintf("could not lock collection %q", name), err)
	}
	return flk, nil
}

func (s *FileRecordStore) loadTasks(name string) ([]models.Task, error) {
	var coll models.TaskCollection
	ok, err := s.readCollection(name, &coll)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Task{}, nil
	}
	return coll.Tasks, nil
}

// Load returns the full current collection.
func (s *FileRecordStore) Load(collection Collection) ([]models.Task, error) {
	flk, err := s.lock(string(collection))
	if err != nil {
		return nil, err
	}
	defer func() { _ = flk.Unlock() }()
	return s.loadTasks(string(collection))
}

// Save replaces the collection in full.
func (s *FileRecordStore) Save(collection Collection, tasks []models.Task) error {
	flk, err := s.lock(string(collection))
	if err != nil {
		return err
	}
	defer func() { _ = flk.Unlock() }()
	return s.writeCollection(string(collection), models.TaskCollection{Tasks: tasks, TotalCount: len(tasks)})
}

// Update runs one load-mutate-save cycle under the collection lock. When
// mutate returns an error the file is left untouched.
func (s *FileRecordStore) Update(collection Collection, mutate func(tasks []models.Task) ([]models.Task, error)) ([]models.Task, error) {
	flk, err := s.lock(string(collection))
	if err != nil {
		return nil, err
	}
	defer func() { _ = flk.Unlock() }()

	tasks, err := s.loadTasks(string(collection))
	if err != nil {
		return nil, err
	}
	mutated, err := mutate(tasks)
	if err != nil {
		return nil, err
	}
	if err := s.writeCollection(string(collection), models.TaskCollection{Tasks: mutated, TotalCount: len(mutated)}); err != nil {
		return nil, err
	}
	return mutated, nil
}

func (s *FileRecordStore) loadUsers() ([]models.User, error) {
	var coll models.UserCollection
	ok, err := s.readCollection(usersFileName, &coll)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.User{}, nil
	}
	return coll.Users, nil
}

// LoadUsers returns the full user directory.
func (s *FileRecordStore) LoadUsers() ([]models.User, error) {
	flk, err := s.lock(usersFileName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = flk.Unlock() }()
	return s.loadUsers()
}

// SaveUsers replaces the user directory in full.
func (s *FileRecordStore) SaveUsers(users []models.User) error {
	flk, err := s.lock(usersFileName)
	if err != nil {
		return err
	}
	defer func() { _ = flk.Unlock() }()
	return s.writeCollection(usersFileName, models.UserCollection{Users: users, TotalCount: len(users)})
}

// UpdateUsers runs one load-mutate-save cycle over the user directory under
// its lock.
func (s *FileRecordStore) UpdateUsers(mutate func(users []models.User) ([]models.User, error)) ([]models.User, error) {
	flk, err := s.lock(usersFileName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = flk.Unlock() }()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	mutated, err := mutate(users)
	if err != nil {
		return nil, err
	}
	if err := s.writeCollection(usersFileName, models.UserCollection{Users: mutated, TotalCount: len(mutated)}); err != nil {
		return nil, err
	}
	return mutated, nil
}

// Close releases the collection locks. flock.Unlock is idempotent.
func (s *FileRecordStore) Close() error {
	var firstErr error
	for _, flk := range s.locks {
		if err := flk.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
