// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

// Package persist loads and saves digest snapshots.
package persist

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/DataDog/hashmeter/tdigest"
	"github.com/DataDog/hashmeter/tdigest/encoding"
)

// Store holds the durable copy of a digest.
type Store interface {
	// Load returns the stored digest, or an empty one when nothing has been
	// stored yet.
	Load() (*tdigest.TDigest, error)
	// Save replaces the stored digest. A failed save leaves the previous
	// snapshot in place.
	Save(d *tdigest.TDigest) error
}

// FileStore keeps a snapshot in a single file.
type FileStore struct {
	path    string
	codec   encoding.Codec
	options []tdigest.Option
}

// NewFileStore returns a store writing to path with codec. The options are used
// to build the digests returned by Load.
func NewFileStore(path string, codec encoding.Codec, opts ...tdigest.Option) *FileStore {
	return &FileStore{path: path, codec: codec, options: opts}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*tdigest.TDigest, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return tdigest.New(s.options...)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading snapshot %s", s.path)
	}
	snapshot, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding snapshot %s", s.path)
	}
	d, err := tdigest.Decode(snapshot, s.options...)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding snapshot %s", s.path)
	}
	return d, nil
}

func (s *FileStore) Save(d *tdigest.TDigest) error {
	data, err := s.codec.Marshal(d.Encode())
	if err != nil {
		return errors.Wrapf(err, "encoding snapshot %s", s.path)
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// over path once it is synced.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file in %s", dir)
	}
	defer func() {
		if err == nil {
			return
		}
		if closeErr := tmp.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			err = multierror.Append(err, closeErr)
		}
		if removeErr := os.Remove(tmp.Name()); removeErr != nil && !os.IsNotExist(removeErr) {
			err = multierror.Append(err, removeErr)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "syncing %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return errors.Wrapf(err, "opening directory %s", dir)
	}
	defer d.Close()
	// Some filesystems do not support syncing directories.
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return errors.Wrapf(err, "syncing directory %s", dir)
	}
	return nil
}

// LoadOrEmpty loads the stored digest. When the snapshot cannot be read or is
// malformed, the error is logged and an empty digest is returned instead.
func LoadOrEmpty(store Store, logger *log.Entry, opts ...tdigest.Option) (*tdigest.TDigest, error) {
	d, err := store.Load()
	if err == nil {
		return d, nil
	}
	logger.WithError(err).Warn("Could not load snapshot, starting from an empty digest")
	return tdigest.New(opts...)
}
