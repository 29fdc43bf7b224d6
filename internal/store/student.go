package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type studentStore struct {
	db *gorm.DB
}

func (s *studentStore) Create(ctx context.Context, student *model.Student) error {
	return s.db.WithContext(ctx).Create(student).Error
}

func (s *studentStore) ByID(ctx context.Context, id uint) (*model.Student, error) {
	return first[model.Student](s.db.WithContext(ctx), id)
}

// Update never touches jamia_id: a student's jamia reference is immutable
// once set.
func (s *studentStore) Update(ctx context.Context, student *model.Student) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(student).Error
}

func (s *studentStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.Student{}, id).Error
}

func (s *studentStore) List(ctx context.Context, scope authz.QueryScope, filter StudentFilter) ([]model.Student, error) {
	query := scope.Apply(s.db.WithContext(ctx))
	if filter.ClassName != "" {
		query = query.Where("class_name = ?", filter.ClassName)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var students []model.Student
	if err := query.Order("name").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
