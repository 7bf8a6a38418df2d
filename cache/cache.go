/*
Package cache implements the compile cache: a sqlite database of encoded
asset blobs keyed by the SHA-1 of their source bytes and encode options.
Blobs are zstd-compressed at rest, and an in-memory LRU absorbs repeated
lookups within one run, so rebuilding a tree only pays for the files that
actually changed.
*/
package cache

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

const lruEntries = 64

// Cache stores compiled asset blobs between runs.
type Cache struct {
	db  *sql.DB
	lru *lru.Cache[string, []byte]

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// New opens or creates the cache database at file.
func New(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS blob (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	l, err := lru.New[string, []byte](lruEntries)
	if err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Cache{
		db:  db,
		lru: l,
		enc: enc,
		dec: dec,
	}, nil
}

// Key derives the cache key for a source stream plus any encode options
// that change the output.
func Key(r io.Reader, extra ...string) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	for _, e := range extra {
		h.Write([]byte(e))
	}
	return fmt.Sprintf("%X", h.Sum(nil)), nil
}

// Get returns the blob stored under key, or nil if the cache has never
// seen it.
func (c *Cache) Get(key string) ([]byte, error) {
	if b, ok := c.lru.Get(key); ok {
		return b, nil
	}

	var data []byte
	switch err := c.db.QueryRow("SELECT data FROM blob WHERE sha1 = ?", key).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		b, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, b)
		return b, nil
	default:
		return nil, err
	}
}

// Put stores data under key, replacing any previous blob.
func (c *Cache) Put(key string, data []byte) error {
	if _, err := c.db.Exec("INSERT OR REPLACE INTO blob (sha1, data) VALUES (?, ?)", key, c.enc.EncodeAll(data, nil)); err != nil {
		return err
	}
	c.lru.Add(key, append([]byte(nil), data...))
	return nil
}

// Close releases the database and codec resources.
func (c *Cache) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
