package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fuzalab/fuza/internal/db"
	"github.com/fuzalab/fuza/internal/domain"
	domcol "github.com/fuzalab/fuza/internal/domain/collection"
)

// store is the consumer interface for collection lifecycle operations.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
}

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo manages collection metadata and the backing FT index.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a collection repository.
func New(s store) *Repo {
	return &Repo{store: s, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// List returns the names of all collections, sorted.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, metaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w: %w", domain.ErrStoreUnavailable, err)
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, metaKey("")))
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a collection exists.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := r.store.Exists(ctx, metaKey(name))
	if err != nil {
		return false, fmt.Errorf("check collection %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}
	return ok, nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.HGetAll(ctx, metaKey(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrCollectionNotFound
	}
	return hashToCollection(name, m), nil
}

// Create stores collection metadata then creates the FT index. On index
// creation failure, the metadata write is rolled back.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) error {
	name := col.Name()

	def := buildIndexDef(name, col.Dim(), r.hnsw)
	if err := r.store.HSet(ctx, metaKey(name), collectionToHash(col)); err != nil {
		return fmt.Errorf("hset collection %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey(name))
		return errors.Join(
			fmt.Errorf("create index %s: %w: %w", name, domain.ErrStoreUnavailable, err),
			cleanupErr,
		)
	}

	return nil
}

// Delete drops the FT index, the metadata hash and every point of the
// collection. Deleting an absent collection is not an error.
func (r *Repo) Delete(ctx context.Context, name string) error {
	if err := r.store.DropIndex(ctx, indexName(name)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}

	keys, err := r.store.Scan(ctx, pointPrefix(name)+"*")
	if err != nil {
		return fmt.Errorf("scan points %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}
	keys = append(keys, metaKey(name))

	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete collection %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func metaKey(name string) string {
	return domain.KeyPrefix + "meta:" + name
}

func indexName(name string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, name)
}

func pointPrefix(name string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, name)
}

func collectionToHash(col domcol.Collection) map[string]string {
	return map[string]string{
		"dim":        strconv.Itoa(col.Dim()),
		"distance":   col.Distance(),
		"created_at": strconv.FormatInt(col.CreatedAt(), 10),
	}
}

func hashToCollection(name string, m map[string]string) domcol.Collection {
	dim, _ := strconv.Atoi(m["dim"])
	createdAt, _ := strconv.ParseInt(m["created_at"], 10, 64)
	return domcol.Reconstruct(name, dim, m["distance"], createdAt)
}
