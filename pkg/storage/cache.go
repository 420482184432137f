package storage

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"msirecon/internal/models"
)

// Cache is a directory of cube artifacts keyed by the content of the
// inputs that produced them. A hit means the same path files and
// parameters were already reconstructed, so the orchestrator can load
// the stored cube instead of recomputing.
type Cache struct {
	dir   string
	store ParquetStore
}

// NewCache opens (creating if needed) a cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("storage: creating cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Key derives the content key for a reconstruction run: a sha256 over
// the waypoint file bytes, the timing file bytes, the spectrum series
// digest, and the numeric parameters that change the output.
func (c *Cache) Key(waypointPath, timingPath, seriesDigest string, params ...float64) (string, error) {
	h := sha256.New()
	for _, path := range []string{waypointPath, timingPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("storage: hashing %s: %w", path, err)
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	h.Write([]byte(seriesDigest))
	h.Write([]byte{0})
	for _, p := range params {
		fmt.Fprintf(h, "%g|", p)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SeriesDigest hashes the full content of a spectrum series: the
// shared mass axis, every scan time, and every intensity value in
// either form. Two series that reconstruct to different cubes never
// share a digest, so scan count alone can never alias a cache entry.
func SeriesDigest(series *models.Series) string {
	h := sha256.New()
	buf := make([]byte, 8)
	write := func(v float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}

	for _, mz := range series.MassAxis {
		write(mz)
	}
	h.Write([]byte{0})
	for _, scan := range series.Scans {
		write(scan.Time)
		for _, v := range scan.Profile {
			write(v)
		}
		for _, p := range scan.Centroids {
			write(p.MZ)
			write(p.Intensity)
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached cube for key, or (nil, nil) on a miss.
func (c *Cache) Lookup(key string) (*models.Cube, error) {
	path := c.artifactPath(key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	cube, err := c.store.ReadCube(path)
	if err != nil {
		return nil, fmt.Errorf("storage: cache artifact %s: %w", key, err)
	}
	return cube, nil
}

// Store writes the cube as the artifact for key.
func (c *Cache) Store(key string, cube *models.Cube) error {
	return c.store.WriteCube(cube, c.artifactPath(key))
}

func (c *Cache) artifactPath(key string) string {
	return filepath.Join(c.dir, key+".parquet")
}
