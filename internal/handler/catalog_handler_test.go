package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hitoshi/bookstore/internal/catalog"
	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/pagination"
)

// mockCatalogService はCatalogServiceInterfaceのモック実装。
type mockCatalogService struct {
	listCategoriesFn func(ctx context.Context) ([]*catalog.CategoryNode, error)
	searchFn         func(ctx context.Context, query, categoryID string, page, perPage int) (*catalog.SearchResult, error)
}

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]*catalog.CategoryNode, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx)
	}
	return []*catalog.CategoryNode{}, nil
}

func (m *mockCatalogService) Search(ctx context.Context, query, categoryID string, page, perPage int) (*catalog.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, categoryID, page, perPage)
	}
	return &catalog.SearchResult{Books: []*model.Book{}, Page: pagination.New(page, perPage, 0)}, nil
}

func TestCatalogHandler_ListCategories_Tree(t *testing.T) {
	svc := &mockCatalogService{
		listCategoriesFn: func(ctx context.Context) ([]*catalog.CategoryNode, error) {
			return []*catalog.CategoryNode{
				{
					Category: &model.Category{ID: "c1", Name: "Fiction", Slug: "fiction", Description: "<b>Stories</b>"},
					Children: []*catalog.CategoryNode{
						{Category: &model.Category{ID: "c2", ParentID: "c1", Name: "Mystery", Slug: "mystery"}, Children: []*catalog.CategoryNode{}},
					},
				},
			}, nil
		},
	}
	h := NewCatalogHandler(svc, nil)

	w := httptest.NewRecorder()
	h.ListCategories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body struct {
		Categories []categoryResponse `json:"categories"`
	}
	decodeBody(t, w, &body)
	want := []categoryResponse{{
		ID: "c1", Name: "Fiction", Slug: "fiction", Description: "<b>Stories</b>",
		Children: []categoryResponse{{ID: "c2", Name: "Mystery", Slug: "mystery", Children: []categoryResponse{}}},
	}}
	if diff := cmp.Diff(want, body.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogHandler_ListCategories_ServiceError_Returns500(t *testing.T) {
	svc := &mockCatalogService{
		listCategoriesFn: func(ctx context.Context) ([]*catalog.CategoryNode, error) {
			return nil, errors.New("db down")
		},
	}
	h := NewCatalogHandler(svc, nil)

	w := httptest.NewRecorder()
	h.ListCategories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestCatalogHandler_SearchBooks_PassesParamsAndReturnsWindow(t *testing.T) {
	type call struct {
		query, categoryID string
		page, perPage     int
	}
	var got call
	svc := &mockCatalogService{
		searchFn: func(ctx context.Context, query, categoryID string, page, perPage int) (*catalog.SearchResult, error) {
			got = call{query, categoryID, page, perPage}
			return &catalog.SearchResult{
				Query: "go",
				Books: []*model.Book{{ID: "b1", Title: "The Go Programming Language", Author: "Donovan", Price: 39.99}},
				Page:  pagination.New(page, perPage, 95),
			}, nil
		},
	}
	h := NewCatalogHandler(svc, nil)

	w := httptest.NewRecorder()
	h.SearchBooks(w, httptest.NewRequest(http.MethodGet, "/api/books/search?q=go&category_id=c1&page=4&per_page=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if diff := cmp.Diff(call{"go", "c1", 4, 10}, got, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("search params mismatch (-want +got):\n%s", diff)
	}

	var body searchResponse
	decodeBody(t, w, &body)
	if len(body.Books) != 1 || body.Books[0].Title != "The Go Programming Language" {
		t.Errorf("books = %+v", body.Books)
	}
	p := body.Pagination
	if p.Number != 4 || p.TotalPages != 10 || !p.HasPrev || !p.HasNext {
		t.Errorf("pagination = %+v", p)
	}
	if diff := cmp.Diff([]int{2, 3, 4, 5, 6}, p.Pages); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogHandler_SearchBooks_NonNumericPaging_UsesDefaults(t *testing.T) {
	var gotPage, gotPerPage int
	svc := &mockCatalogService{
		searchFn: func(ctx context.Context, query, categoryID string, page, perPage int) (*catalog.SearchResult, error) {
			gotPage, gotPerPage = page, perPage
			return &catalog.SearchResult{Books: []*model.Book{}, Page: pagination.New(page, perPage, 0)}, nil
		},
	}
	h := NewCatalogHandler(svc, nil)

	w := httptest.NewRecorder()
	h.SearchBooks(w, httptest.NewRequest(http.MethodGet, "/api/books/search?page=abc&per_page=", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPage != 0 || gotPerPage != 0 {
		t.Errorf("page = %d, perPage = %d, want 0/0 for service defaults", gotPage, gotPerPage)
	}

	var body searchResponse
	decodeBody(t, w, &body)
	if body.Books == nil || len(body.Books) != 0 {
		t.Errorf("books should be an empty array, got %v", body.Books)
	}
	if len(body.Pagination.Pages) != 0 {
		t.Errorf("pages = %v, want empty", body.Pagination.Pages)
	}
}

func TestCatalogHandler_SearchBooks_UnknownCategory_Returns404(t *testing.T) {
	svc := &mockCatalogService{
		searchFn: func(ctx context.Context, query, categoryID string, page, perPage int) (*catalog.SearchResult, error) {
			return nil, model.NewCategoryNotFoundError(categoryID)
		},
	}
	h := NewCatalogHandler(svc, nil)

	w := httptest.NewRecorder()
	h.SearchBooks(w, httptest.NewRequest(http.MethodGet, "/api/books/search?category_id=missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := parseAPIErrorResponse(t, w); body.Code != model.ErrCodeCategoryNotFound {
		t.Errorf("code = %q", body.Code)
	}
}
