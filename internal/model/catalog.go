package model

import "time"

// Category は書籍カテゴリを表す。ParentIDが空の場合はトップレベル。
type Category struct {
	ID          string
	ParentID    string
	Name        string
	Slug        string
	Description string
	SortOrder   int
}

// Book は書籍を表す。
type Book struct {
	ID          string
	CategoryID  string
	Title       string
	Author      string
	ISBN        string
	Price       float64
	PublishedAt *time.Time
	CreatedAt   time.Time
}

// BookSearchParams は書籍検索の条件を表す。
type BookSearchParams struct {
	Query      string
	CategoryID string
	Limit      int
	Offset     int
}
