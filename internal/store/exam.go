package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type examStore struct {
	db *gorm.DB
}

func (s *examStore) Create(ctx context.Context, result *model.ExamResult) error {
	return s.db.WithContext(ctx).Create(result).Error
}

func (s *examStore) List(ctx context.Context, scope authz.QueryScope, examName string, studentID uint) ([]model.ExamResult, error) {
	query := scope.Apply(s.db.WithContext(ctx))
	if examName != "" {
		query = query.Where("exam_name = ?", examName)
	}
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}

	var results []model.ExamResult
	if err := query.Order("exam_name, subject").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
