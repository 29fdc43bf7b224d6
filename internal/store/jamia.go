package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type jamiaStore struct {
	db *gorm.DB
}

func (s *jamiaStore) Create(ctx context.Context, jamia *model.Jamia) error {
	return s.db.WithContext(ctx).Create(jamia).Error
}

// JamiaByID hides soft-deleted jamias through gorm's default scope, per the
// JamiaDirectory contract.
func (s *jamiaStore) JamiaByID(ctx context.Context, id uint) (*model.Jamia, error) {
	return first[model.Jamia](s.db.WithContext(ctx), id)
}

func (s *jamiaStore) BySlug(ctx context.Context, slug string) (*model.Jamia, error) {
	return first[model.Jamia](s.db.WithContext(ctx), "slug = ?", slug)
}

func (s *jamiaStore) HasJamias(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Jamia{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *jamiaStore) List(ctx context.Context) ([]model.Jamia, error) {
	var jamias []model.Jamia
	if err := s.db.WithContext(ctx).Order("name").Find(&jamias).Error; err != nil {
		return nil, err
	}
	return jamias, nil
}

func (s *jamiaStore) Update(ctx context.Context, jamia *model.Jamia) error {
	return s.db.WithContext(ctx).Save(jamia).Error
}

func (s *jamiaStore) SoftDelete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.Jamia{}, id).Error
}
