package repo

import (
	"context"

	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByTokenHash(ctx context.Context, hash string) (*model.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).Where(&model.User{ID: id}).First(&u).Error
}

func (r *userRepo) GetByTokenHash(ctx context.Context, hash string) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).Where(&model.User{TokenHash: hash}).First(&u).Error
}
