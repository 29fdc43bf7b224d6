package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type hostelStore struct {
	db *gorm.DB
}

func (s *hostelStore) CreateRoom(ctx context.Context, room *model.HostelRoom) error {
	return s.db.WithContext(ctx).Create(room).Error
}

func (s *hostelStore) RoomByID(ctx context.Context, id uint) (*model.HostelRoom, error) {
	return first[model.HostelRoom](s.db.WithContext(ctx), id)
}

func (s *hostelStore) UpdateRoom(ctx context.Context, room *model.HostelRoom) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(room).Error
}

func (s *hostelStore) DeleteRoom(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.HostelRoom{}, id).Error
}

func (s *hostelStore) ListRooms(ctx context.Context, scope authz.QueryScope) ([]model.HostelRoom, error) {
	var rooms []model.HostelRoom
	if err := scope.Apply(s.db.WithContext(ctx)).Order("number").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *hostelStore) CreateAllocation(ctx context.Context, alloc *model.HostelAllocation) error {
	return s.db.WithContext(ctx).Create(alloc).Error
}

func (s *hostelStore) AllocationByID(ctx context.Context, id uint) (*model.HostelAllocation, error) {
	return first[model.HostelAllocation](s.db.WithContext(ctx), id)
}

func (s *hostelStore) UpdateAllocation(ctx context.Context, alloc *model.HostelAllocation) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(alloc).Error
}

func (s *hostelStore) ListAllocations(ctx context.Context, scope authz.QueryScope, activeOnly bool) ([]model.HostelAllocation, error) {
	query := scope.Apply(s.db.WithContext(ctx))
	if activeOnly {
		query = query.Where("vacated_at IS NULL")
	}

	var allocations []model.HostelAllocation
	if err := query.Preload("Room").Preload("Student").Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}
