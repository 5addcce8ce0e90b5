package location

import (
	"context"
	"log"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"cinespot/internal/domain/upload"
)

// Indexer is the optional external full-text index. Search returns
// matching ids in relevance order.
type Indexer interface {
	Index(ctx context.Context, loc *Location) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]string, error)
}

// Service owns the Location lifecycle: validation, the staged upload
// commit, image-shape normalization and index sync.
type Service struct {
	repo    Repository
	uploads *upload.Service
	indexer Indexer // nil when no external index is configured
	baseURL string
}

func NewService(repo Repository, uploads *upload.Service, indexer Indexer, baseURL string) *Service {
	return &Service{
		repo:    repo,
		uploads: uploads,
		indexer: indexer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type CreateInput struct {
	Name        string
	Description string
	Movie       *string
	Latitude    float64
	Longitude   float64
	Files       []*multipart.FileHeader
}

// Create stages the uploaded images, persists the record, and commits
// the files only after the record write succeeds. On a store failure
// the staged files are discarded, so the upload root never holds a
// file no record references.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Location, error) {
	if err := validateFields(in.Name, in.Description); err != nil {
		return nil, err
	}

	staged, err := s.uploads.Stage(in.Files)
	if err != nil {
		return nil, err
	}

	movie := in.Movie
	if movie != nil && strings.TrimSpace(*movie) == "" {
		movie = nil
	}

	loc := &Location{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Movie:       movie,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Images:      ImageList(staged.Paths),
	}

	if err := loc.Images.Validate(); err != nil {
		staged.Discard()
		return nil, &ValidationError{Fields: []string{err.Error()}}
	}

	if err := s.repo.Create(ctx, loc); err != nil {
		staged.Discard()
		return nil, &StorageError{Err: err}
	}

	if err := staged.Commit(); err != nil {
		// Record exists but a file failed to promote; surface it in the
		// log, the record itself is valid.
		log.Printf("upload commit failed for location %s: %v", loc.ID, err)
	}

	s.indexAsync(ctx, loc)

	return s.Normalize(loc), nil
}

// Update replaces the full record. Newly uploaded files replace the
// stored image list; with no new files the stored list is kept.
func (s *Service) Update(ctx context.Context, id string, in CreateInput) (*Location, error) {
	if err := validateFields(in.Name, in.Description); err != nil {
		return nil, err
	}

	loc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	staged, err := s.uploads.Stage(in.Files)
	if err != nil {
		return nil, err
	}

	movie := in.Movie
	if movie != nil && strings.TrimSpace(*movie) == "" {
		movie = nil
	}

	loc.Name = in.Name
	loc.Description = in.Description
	loc.Movie = movie
	loc.Latitude = in.Latitude
	loc.Longitude = in.Longitude
	if len(staged.Paths) > 0 {
		loc.Images = ImageList(staged.Paths)
	}

	if err := s.repo.Update(ctx, loc); err != nil {
		staged.Discard()
		return nil, &StorageError{Err: err}
	}

	if err := staged.Commit(); err != nil {
		log.Printf("upload commit failed for location %s: %v", loc.ID, err)
	}

	s.indexAsync(ctx, loc)

	return s.Normalize(loc), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Location, error) {
	loc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return s.Normalize(loc), nil
}

// Delete removes the record and, best effort, the files it references.
// The file sweep runs after the record is gone; a shared or already
// missing file is silently skipped.
func (s *Service) Delete(ctx context.Context, id string) error {
	loc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return wrapStoreErr(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapStoreErr(err)
	}

	for _, p := range s.mergedPaths(loc) {
		if !strings.HasPrefix(p, "http://") && !strings.HasPrefix(p, "https://") {
			s.uploads.Remove(p)
		}
	}

	if s.indexer != nil {
		if err := s.indexer.Remove(ctx, id); err != nil {
			log.Printf("search index remove failed for %s: %v", id, err)
		}
	}

	return nil
}

// Search returns all records when the query is blank, otherwise the
// full-text matches across name, description and movie. The external
// index is preferred when configured; on its failure the store's own
// search answers instead.
func (s *Service) Search(ctx context.Context, query string) ([]Location, error) {
	query = strings.TrimSpace(query)

	var (
		locs []Location
		err  error
	)

	switch {
	case query == "":
		locs, err = s.repo.List(ctx)
	case s.indexer != nil:
		var ids []string
		ids, err = s.indexer.Search(ctx, query)
		if err != nil {
			log.Printf("search index query failed, falling back to store: %v", err)
			locs, err = s.repo.Search(ctx, query)
		} else {
			locs, err = s.repo.GetByIDs(ctx, ids)
		}
	default:
		locs, err = s.repo.Search(ctx, query)
	}

	if err != nil {
		return nil, &StorageError{Err: err}
	}

	out := make([]Location, 0, len(locs))
	for i := range locs {
		out = append(out, *s.Normalize(&locs[i]))
	}
	return out, nil
}

// Normalize folds every historical image shape into the canonical
// form: one ordered array of absolute URLs. Relative paths get the
// service base address prefixed; absolute entries pass through.
func (s *Service) Normalize(loc *Location) *Location {
	out := *loc

	merged := s.mergedPaths(loc)
	images := make(ImageList, 0, len(merged))
	for _, img := range merged {
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			images = append(images, img)
			continue
		}
		if !strings.HasPrefix(img, "/") {
			img = "/" + img
		}
		images = append(images, s.baseURL+img)
	}

	out.Images = images
	out.LegacyImage = nil
	return &out
}

// mergedPaths prefers the canonical images column and falls back to
// the legacy singular column when it is the only one populated.
func (s *Service) mergedPaths(loc *Location) []string {
	if len(loc.Images) > 0 {
		return loc.Images
	}
	return loc.LegacyImage
}

// SyncIndex pushes every stored record into the external index.
// Called on startup: a healthy-but-stale index answers queries with
// empty hit sets and no error, so records written while the index was
// down would otherwise never surface in search again.
func (s *Service) SyncIndex(ctx context.Context) error {
	if s.indexer == nil {
		return nil
	}

	locs, err := s.repo.List(ctx)
	if err != nil {
		return &StorageError{Err: err}
	}

	for i := range locs {
		if err := s.indexer.Index(ctx, &locs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) indexAsync(ctx context.Context, loc *Location) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.Index(ctx, loc); err != nil {
		log.Printf("search index update failed for %s: %v", loc.ID, err)
	}
}

func validateFields(name, description string) error {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func wrapStoreErr(err error) error {
	if err == ErrNotFound {
		return err
	}
	return &StorageError{Err: err}
}
