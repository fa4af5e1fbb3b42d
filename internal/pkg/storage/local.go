package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const partSuffix = ".part"

type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create upload directory", goerr.V("root", root))
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

// Save writes into a temporary ".part" file first so readers never see a
// partially written object. The commit is a hard link, which fails instead of
// replacing an existing object.
func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader) error {
	if err := validateKey(key); err != nil {
		return err
	}

	dest := filepath.Join(s.root, key)
	tmp := dest + partSuffix

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to create object", goerr.V("key", key))
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return goerr.Wrap(err, "failed to write object", goerr.V("key", key))
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return goerr.Wrap(err, "failed to close object", goerr.V("key", key))
	}

	err = os.Link(tmp, dest)
	os.Remove(tmp)
	if errors.Is(err, fs.ErrExist) {
		return goerr.Wrap(ErrObjectExists, "object already exists", goerr.V("key", key))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to commit object", goerr.V("key", key))
	}

	return nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.root, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, goerr.Wrap(ErrObjectNotFound, "no such object", goerr.V("key", key))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object", goerr.V("key", key))
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to delete object", goerr.V("key", key))
	}
	return nil
}

func (s *LocalStore) List(ctx context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list objects", goerr.V("root", s.root))
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasSuffix(entry.Name(), partSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		objects = append(objects, ObjectInfo{Key: entry.Name(), ModTime: info.ModTime()})
	}

	return objects, nil
}
