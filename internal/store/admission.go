package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type admissionStore struct {
	db *gorm.DB
}

func (s *admissionStore) Create(ctx context.Context, admission *model.Admission) error {
	return s.db.WithContext(ctx).Create(admission).Error
}

func (s *admissionStore) ByID(ctx context.Context, id uint) (*model.Admission, error) {
	return first[model.Admission](s.db.WithContext(ctx), id)
}

func (s *admissionStore) Update(ctx context.Context, admission *model.Admission) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(admission).Error
}

func (s *admissionStore) List(ctx context.Context, scope authz.QueryScope, status string) ([]model.Admission, error) {
	query := scope.Apply(s.db.WithContext(ctx))
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var admissions []model.Admission
	if err := query.Order("created_at DESC").Find(&admissions).Error; err != nil {
		return nil, err
	}
	return admissions, nil
}
