// Package catalog はカテゴリメニューと書籍検索を提供する。
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/pagination"
	"github.com/hitoshi/bookstore/internal/repository"
	"github.com/hitoshi/bookstore/internal/security"
)

// maxQueryLength は検索語として扱う最大文字数。超過分は切り捨てる。
const maxQueryLength = 100

// CategoryNode はカテゴリメニューの1項目。Childrenは直下のサブカテゴリ。
type CategoryNode struct {
	Category *model.Category
	Children []*CategoryNode
}

// SearchResult は書籍検索の結果。
type SearchResult struct {
	Query string
	Books []*model.Book
	Page  pagination.Page
}

// Service はカタログのビジネスロジックを提供する。
type Service struct {
	categories repository.CategoryRepository
	books      repository.BookRepository
	text       security.TextSanitizer
	html       security.HTMLSanitizer
}

// NewService はServiceを生成する。
func NewService(
	categories repository.CategoryRepository,
	books repository.BookRepository,
	text security.TextSanitizer,
	html security.HTMLSanitizer,
) *Service {
	return &Service{
		categories: categories,
		books:      books,
		text:       text,
		html:       html,
	}
}

// ListCategories はカテゴリをツリー構造で返す。
// 説明文は許可タグのみを残したHTMLにサニタイズする。
// 親が見つからないカテゴリはトップレベルとして扱う。
func (s *Service) ListCategories(ctx context.Context) ([]*CategoryNode, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	nodes := make(map[string]*CategoryNode, len(categories))
	for _, c := range categories {
		sanitized := *c
		sanitized.Description = s.html.RichText(c.Description)
		nodes[c.ID] = &CategoryNode{Category: &sanitized, Children: []*CategoryNode{}}
	}

	roots := []*CategoryNode{}
	for _, c := range categories {
		node := nodes[c.ID]
		if parent, ok := nodes[c.ParentID]; ok && c.ParentID != c.ID {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// Search は書籍を検索する。
// 検索語はタグを除去してから使い、空の場合は全件が対象になる。
// categoryIDが指定された場合は存在を確認し、無ければCATEGORY_NOT_FOUNDを返す。
func (s *Service) Search(ctx context.Context, query, categoryID string, page, perPage int) (*SearchResult, error) {
	q := truncateRunes(s.text.PlainText(query), maxQueryLength)

	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			return nil, model.NewCategoryNotFoundError(categoryID)
		}
		category, err := s.categories.FindByID(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to find category: %w", err)
		}
		if category == nil {
			return nil, model.NewCategoryNotFoundError(categoryID)
		}
	}

	p := pagination.New(page, perPage, 0)
	books, total, err := s.books.Search(ctx, model.BookSearchParams{
		Query:      q,
		CategoryID: categoryID,
		Limit:      p.Limit(),
		Offset:     p.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	return &SearchResult{
		Query: q,
		Books: books,
		Page:  p.WithTotal(total),
	}, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
