package location

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, loc *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	GetByIDs(ctx context.Context, ids []string) ([]Location, error)
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Location, error)
	Search(ctx context.Context, query string) ([]Location, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, loc *Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Location, error) {
	var loc Location
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetByIDs returns the records for the given ids in the given order.
// Unknown ids are skipped.
func (r *repository) GetByIDs(ctx context.Context, ids []string) ([]Location, error) {
	var found []Location
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Location, len(found))
	for _, loc := range found {
		byID[loc.ID] = loc
	}

	ordered := make([]Location, 0, len(found))
	for _, id := range ids {
		if loc, ok := byID[id]; ok {
			ordered = append(ordered, loc)
		}
	}
	return ordered, nil
}

func (r *repository) Update(ctx context.Context, loc *Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Location{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]Location, error) {
	var locs []Location
	err := r.db.WithContext(ctx).Find(&locs).Error
	return locs, err
}

// Search does a case-insensitive match of the query terms against
// name, description and movie. Every term has to appear in at least
// one of the three fields.
func (r *repository) Search(ctx context.Context, query string) ([]Location, error) {
	terms := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(terms) == 0 {
		return r.List(ctx)
	}

	q := r.db.WithContext(ctx).Model(&Location{})
	for _, term := range terms {
		like := "%" + term + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(COALESCE(movie, '')) LIKE ?",
			like, like, like,
		)
	}

	var locs []Location
	err := q.Find(&locs).Error
	return locs, err
}
