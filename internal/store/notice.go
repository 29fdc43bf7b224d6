package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type noticeStore struct {
	db *gorm.DB
}

func (s *noticeStore) Create(ctx context.Context, notice *model.Notice) error {
	return s.db.WithContext(ctx).Create(notice).Error
}

func (s *noticeStore) ByID(ctx context.Context, id uint) (*model.Notice, error) {
	return first[model.Notice](s.db.WithContext(ctx), id)
}

func (s *noticeStore) Update(ctx context.Context, notice *model.Notice) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(notice).Error
}

func (s *noticeStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.Notice{}, id).Error
}

func (s *noticeStore) List(ctx context.Context, scope authz.QueryScope, audience string) ([]model.Notice, error) {
	query := scope.Apply(s.db.WithContext(ctx))
	if audience != "" {
		query = query.Where("audience IN ('all', ?)", audience)
	}

	var notices []model.Notice
	if err := query.Order("created_at DESC").Find(&notices).Error; err != nil {
		return nil, err
	}
	return notices, nil
}
