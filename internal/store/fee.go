package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type feeStore struct {
	db *gorm.DB
}

func (s *feeStore) CreateStructure(ctx context.Context, fs *model.FeeStructure) error {
	return s.db.WithContext(ctx).Create(fs).Error
}

func (s *feeStore) StructureByID(ctx context.Context, id uint) (*model.FeeStructure, error) {
	return first[model.FeeStructure](s.db.WithContext(ctx), id)
}

func (s *feeStore) UpdateStructure(ctx context.Context, fs *model.FeeStructure) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(fs).Error
}

func (s *feeStore) DeleteStructure(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.FeeStructure{}, id).Error
}

func (s *feeStore) ListStructures(ctx context.Context, scope authz.QueryScope) ([]model.FeeStructure, error) {
	var structures []model.FeeStructure
	if err := scope.Apply(s.db.WithContext(ctx)).Order("name").Find(&structures).Error; err != nil {
		return nil, err
	}
	return structures, nil
}

func (s *feeStore) InvoicedStudentIDs(ctx context.Context, structureID uint, month string) (map[uint]struct{}, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("fee_structure_id = ? AND month = ?", structureID, month).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// CreateInvoices writes a batch in one transaction so a partial bulk run
// never leaves half a month billed.
func (s *feeStore) CreateInvoices(ctx context.Context, invoices []model.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&invoices).Error
	})
}

func (s *feeStore) InvoiceByID(ctx context.Context, id uint) (*model.Invoice, error) {
	return first[model.Invoice](s.db.WithContext(ctx), id)
}

func (s *feeStore) UpdateInvoice(ctx context.Context, invoice *model.Invoice) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(invoice).Error
}

func (s *feeStore) ListInvoices(ctx context.Context, scope authz.QueryScope, filter InvoiceFilter) ([]model.Invoice, error) {
	query := scope.Apply(s.db.WithContext(ctx))
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Month != "" {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var invoices []model.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
