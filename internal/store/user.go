package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type userStore struct {
	db *gorm.DB
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *userStore) ByID(ctx context.Context, id uint) (*model.User, error) {
	return first[model.User](s.db.WithContext(ctx), id)
}

func (s *userStore) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return first[model.User](s.db.WithContext(ctx), "email = ?", email)
}

func (s *userStore) List(ctx context.Context, scope authz.QueryScope) ([]model.User, error) {
	var users []model.User
	if err := scope.Apply(s.db.WithContext(ctx)).Order("email").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}
