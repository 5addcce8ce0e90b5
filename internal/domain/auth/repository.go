package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	Upsert(ctx context.Context, admin *Admin) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	var admin Admin
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repository) Upsert(ctx context.Context, admin *Admin) error {
	var existing Admin
	err := r.db.WithContext(ctx).Where("email = ?", admin.Email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(admin).Error
	}
	if err != nil {
		return err
	}

	existing.PasswordHash = admin.PasswordHash
	return r.db.WithContext(ctx).Save(&existing).Error
}
