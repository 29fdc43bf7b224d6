package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type attendanceStore struct {
	db *gorm.DB
}

func (s *attendanceStore) ByStudentDate(ctx context.Context, jamiaID *uint, studentID uint, date time.Time) (*model.AttendanceRecord, error) {
	query := s.db.WithContext(ctx).Where("student_id = ? AND date = ?", studentID, date)
	if jamiaID != nil {
		query = query.Where("jamia_id = ?", *jamiaID)
	} else {
		query = query.Where("jamia_id IS NULL")
	}
	return first[model.AttendanceRecord](query)
}

func (s *attendanceStore) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *attendanceStore) Update(ctx context.Context, record *model.AttendanceRecord) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(record).Error
}

func (s *attendanceStore) ListByDate(ctx context.Context, scope authz.QueryScope, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	query := scope.Apply(s.db.WithContext(ctx)).Where("date = ?", date)
	if err := query.Preload("Student").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *attendanceStore) ListByStudent(ctx context.Context, scope authz.QueryScope, studentID uint) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	query := scope.Apply(s.db.WithContext(ctx)).Where("student_id = ?", studentID)
	if err := query.Order("date DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
