// Package pagination はページ番号ベースのページネーション計算を提供する。
// ページネーションUIが描画するページ番号の窓もここで算出する。
package pagination

import "math"

// 1ページあたりの件数の既定値と上限。
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page はページネーションの状態を表す。
type Page struct {
	Number     int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// New はページ番号・件数・総件数からPageを生成する。
// pageは1未満なら1、perPageは1未満なら既定値、上限超過なら上限に丸める。
// pageが総ページ数を超える場合もそのまま保持し、HasNextはfalseになる。
// ただしOffsetがintに収まるよう、pageはmath.MaxInt/perPageで頭打ちにする。
func New(page, perPage, total int) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / perPage; page > maxPage {
		page = maxPage
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + perPage - 1) / perPage

	return Page{
		Number:     page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Offset はSQLのOFFSETに使う値を返す。
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit はSQLのLIMITに使う値を返す。
func (p Page) Limit() int {
	return p.PerPage
}

// WithTotal は総件数を差し替えたPageを返す。
// 件数取得前にOffset/Limitを使い、取得後に総件数を反映する用途。
func (p Page) WithTotal(total int) Page {
	return New(p.Number, p.PerPage, total)
}

// Window は現在ページを中心に最大size個のページ番号を返す。
// 端に寄る場合は窓をずらし、常に1..TotalPagesの範囲に収める。
func (p Page) Window(size int) []int {
	if p.TotalPages == 0 || size < 1 {
		return []int{}
	}
	if size > p.TotalPages {
		size = p.TotalPages
	}

	current := p.Number
	if current > p.TotalPages {
		current = p.TotalPages
	}

	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - size + 1
	}

	pages := make([]int, 0, size)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
