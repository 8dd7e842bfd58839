package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/bookstore/internal/catalog"
	"github.com/hitoshi/bookstore/internal/pagination"
)

// paginationWindowSize はページネーションUIに表示するページ番号の数。
const paginationWindowSize = 5

// CatalogServiceInterface はカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListCategories(ctx context.Context) ([]*catalog.CategoryNode, error)
	Search(ctx context.Context, query, categoryID string, page, perPage int) (*catalog.SearchResult, error)
}

// CatalogHandler はカテゴリメニューと書籍検索のHTTPハンドラー。
type CatalogHandler struct {
	service CatalogServiceInterface
	errors  errorResponder
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface, m MetricsRecorder) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		errors:  errorResponder{metrics: metricsOrNoop(m)},
	}
}

type categoryResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Children    []categoryResponse `json:"children"`
}

func toCategoryResponses(nodes []*catalog.CategoryNode) []categoryResponse {
	out := make([]categoryResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, categoryResponse{
			ID:          n.Category.ID,
			Name:        n.Category.Name,
			Slug:        n.Category.Slug,
			Description: n.Category.Description,
			Children:    toCategoryResponses(n.Children),
		})
	}
	return out
}

type bookResponse struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	ISBN        string     `json:"isbn"`
	Price       float64    `json:"price"`
	PublishedAt *time.Time `json:"published_at"`
}

// paginationResponse はページネーション状態と表示するページ番号の窓。
type paginationResponse struct {
	pagination.Page
	Pages []int `json:"pages"`
}

type searchResponse struct {
	Query      string             `json:"query"`
	Books      []bookResponse     `json:"books"`
	Pagination paginationResponse `json:"pagination"`
}

// ListCategories はカテゴリメニューをツリー構造で返す。
// GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.errors.handle(w, r, "categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": toCategoryResponses(nodes)})
}

// SearchBooks は書籍を検索する。
// GET /api/books/search?q=&category_id=&page=&per_page=
// page・per_pageが数値でない場合は既定値を使う。
func (h *CatalogHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := queryInt(query.Get("page"))
	perPage := queryInt(query.Get("per_page"))

	result, err := h.service.Search(r.Context(), query.Get("q"), query.Get("category_id"), page, perPage)
	if err != nil {
		h.errors.handle(w, r, "search", err)
		return
	}

	books := make([]bookResponse, 0, len(result.Books))
	for _, b := range result.Books {
		books = append(books, bookResponse{
			ID:          b.ID,
			CategoryID:  b.CategoryID,
			Title:       b.Title,
			Author:      b.Author,
			ISBN:        b.ISBN,
			Price:       b.Price,
			PublishedAt: b.PublishedAt,
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query: result.Query,
		Books: books,
		Pagination: paginationResponse{
			Page:  result.Page,
			Pages: result.Page.Window(paginationWindowSize),
		},
	})
}

// queryInt はクエリパラメータを整数に変換する。変換できない場合は0を返す。
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
