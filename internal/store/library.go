package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type libraryStore struct {
	db *gorm.DB
}

func (s *libraryStore) CreateBook(ctx context.Context, book *model.Book) error {
	return s.db.WithContext(ctx).Create(book).Error
}

func (s *libraryStore) BookByID(ctx context.Context, id uint) (*model.Book, error) {
	return first[model.Book](s.db.WithContext(ctx), id)
}

func (s *libraryStore) UpdateBook(ctx context.Context, book *model.Book) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(book).Error
}

func (s *libraryStore) DeleteBook(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.Book{}, id).Error
}

func (s *libraryStore) ListBooks(ctx context.Context, scope authz.QueryScope) ([]model.Book, error) {
	var books []model.Book
	if err := scope.Apply(s.db.WithContext(ctx)).Order("title").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (s *libraryStore) CreateIssue(ctx context.Context, issue *model.BookIssue) error {
	return s.db.WithContext(ctx).Create(issue).Error
}

func (s *libraryStore) IssueByID(ctx context.Context, id uint) (*model.BookIssue, error) {
	return first[model.BookIssue](s.db.WithContext(ctx), id)
}

func (s *libraryStore) UpdateIssue(ctx context.Context, issue *model.BookIssue) error {
	return s.db.WithContext(ctx).Omit("jamia_id").Save(issue).Error
}

func (s *libraryStore) ListIssues(ctx context.Context, scope authz.QueryScope, openOnly bool) ([]model.BookIssue, error) {
	query := scope.Apply(s.db.WithContext(ctx))
	if openOnly {
		query = query.Where("returned_at IS NULL")
	}

	var issues []model.BookIssue
	if err := query.Preload("Book").Order("issued_at DESC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}
