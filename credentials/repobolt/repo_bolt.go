// Package repobolt provides a bbolt-backed credential repository for the persistent tier.
package repobolt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-auth-client/credentials"
	"go.etcd.io/bbolt"
)

// DefaultFileName is the database file created inside the data folder.
const DefaultFileName = "credentials.db"

var bucketName = []byte("credentials")

// Repo implements credentials.Repo on top of a bbolt database.
type Repo struct {
	db *bbolt.DB
}

var _ credentials.Repo = (*Repo)(nil)

// NewRepo returns a Repo backed by the given database.
func NewRepo(db *bbolt.DB) (*Repo, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating credentials bucket: %w", err)
	}
	return &Repo{db: db}, nil
}

// NewRepoFromFolder opens (or creates) the credentials database inside folder.
// The folder is created with 0700 and the file with 0600 permissions.
func NewRepoFromFolder(folder string, options *bbolt.Options) (*Repo, error) {
	if err := os.MkdirAll(folder, 0700); err != nil {
		return nil, fmt.Errorf("creating data folder: %w", err)
	}
	db, err := bbolt.Open(filepath.Join(folder, DefaultFileName), 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	repo, err := NewRepo(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		// data is only valid inside the transaction
		value = string(data)
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, found, nil
}

func (r *Repo) Put(key, value string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (r *Repo) Delete(key string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}
