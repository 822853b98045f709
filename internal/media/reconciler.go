package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/khiva-consulting/backoffice-api/internal/storage"
	"go.uber.org/zap"
)

// LimitError is a category-tagged validation failure: submitting or
// accumulating more images than the category allows fails the whole
// contract write, never a partial save.
type LimitError struct {
	Category Category
	Limit    int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: at most %d images allowed", e.Category, e.Limit)
}

// SlugError is raised when no usable client-name slug can be derived, so
// no deterministic filename exists for the category.
type SlugError struct {
	Category Category
}

func (e *SlugError) Error() string {
	return fmt.Sprintf("%s: client name is required to store images", e.Category)
}

// Upload is one raw multipart file submission.
type Upload struct {
	Filename string
	Data     io.Reader
}

// Submission carries the new items for one category from a single request.
// When raw uploads are present, base64 entries are ignored entirely; the
// two channels never mix.
type Submission struct {
	Uploads []Upload
	Base64  []string
}

// IsEmpty reports whether the submission carries no new items.
func (s Submission) IsEmpty() bool {
	return len(s.Uploads) == 0 && len(s.Base64) == 0
}

// Reconciler merges previously stored attachment paths with newly
// submitted uploads under the category count limits, writing accepted
// files through the configured store.
type Reconciler struct {
	store  storage.Storage
	logger *zap.Logger
	randFn func(min, max int) int
}

// NewReconciler creates a reconciler writing through the given store.
func NewReconciler(store storage.Storage, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
		randFn: func(min, max int) int {
			return min + rand.Intn(max-min+1)
		},
	}
}

// Reconcile produces the final ordered stored-path list for one category:
// the normalized existing paths followed by the paths of newly written
// files. clientName drives the filename slug. An empty submission returns
// the normalized existing list unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, category Category, existing []string, sub Submission, clientName string) ([]string, error) {
	kept := NormalizePaths(existing)

	if sub.IsEmpty() {
		if len(kept) > category.MaxTotal() {
			return nil, &LimitError{Category: category, Limit: category.MaxTotal()}
		}
		return kept, nil
	}

	slug := Slugify(clientName)
	if slug == "" {
		return nil, &SlugError{Category: category}
	}

	stored, err := r.storeNew(ctx, category, sub, slug)
	if err != nil {
		return nil, err
	}

	if len(stored) > category.PerRequestLimit() {
		return nil, &LimitError{Category: category, Limit: category.PerRequestLimit()}
	}

	final := append(kept, stored...)
	if len(final) > category.MaxTotal() {
		return nil, &LimitError{Category: category, Limit: category.MaxTotal()}
	}
	return final, nil
}

// storeNew writes the submitted items and returns their normalized paths.
// Raw uploads take priority; base64 entries are only consulted when no
// raw files were submitted.
func (r *Reconciler) storeNew(ctx context.Context, category Category, sub Submission, slug string) ([]string, error) {
	stored := []string{}

	if len(sub.Uploads) > 0 {
		for _, up := range sub.Uploads {
			ext := filepath.Ext(up.Filename)
			if ext == "" {
				ext = ".jpg"
			}
			key := r.buildKey(category, slug, ext)
			if err := r.write(ctx, category, key, ContentTypeForExt(ext), up.Data); err != nil {
				return nil, err
			}
			stored = append(stored, NormalizePath(key))
		}
		return stored, nil
	}

	for _, entry := range sub.Base64 {
		if !IsDataURL(entry) {
			continue
		}
		data, ext, err := DecodeDataURL(entry)
		if err != nil {
			r.logger.Warn("skipping undecodable base64 image",
				zap.String("category", string(category)),
				zap.Error(err),
			)
			continue
		}
		key := r.buildKey(category, slug, ext)
		if err := r.write(ctx, category, key, ContentTypeForExt(ext), bytes.NewReader(data)); err != nil {
			return nil, err
		}
		stored = append(stored, NormalizePath(key))
	}
	return stored, nil
}

// buildKey derives the storage key for a new file. Passport images use the
// bare slug so a re-upload lands on the same path; other categories append
// a random 6-7 digit suffix so repeated uploads accumulate distinct files.
func (r *Reconciler) buildKey(category Category, slug, ext string) string {
	name := slug
	if category.UsesRandomSuffix() {
		name = fmt.Sprintf("%s_%d", slug, r.randFn(100000, 9999999))
	}
	return category.Folder() + "/" + name + strings.ToLower(ext)
}

// write stores the file, deleting any previous file at the same path
// first. A failed delete is logged and tolerated; the store overwrite
// still lands the new content.
func (r *Reconciler) write(ctx context.Context, category Category, key, contentType string, data io.Reader) error {
	if exists, err := r.store.Exists(ctx, key); err == nil && exists {
		if err := r.store.Delete(ctx, key); err != nil {
			r.logger.Warn("could not delete existing file before overwrite",
				zap.String("path", key),
				zap.Error(err),
			)
		}
	}

	if _, err := r.store.Save(ctx, key, contentType, data); err != nil {
		return fmt.Errorf("failed to store %s image: %w", category, err)
	}
	return nil
}
