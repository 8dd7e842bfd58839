package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/bookstore/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// List は全カテゴリをsort_order、name順で返す。
func (r *PostgresCategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, COALESCE(parent_id::text, ''), name, slug, description, sort_order
		 FROM categories
		 ORDER BY sort_order, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.Slug, &c.Description, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(parent_id::text, ''), name, slug, description, sort_order
		 FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ParentID, &c.Name, &c.Slug, &c.Description, &c.SortOrder)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return c, nil
}

// PostgresBookRepo はPostgreSQLを使用した書籍リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

// buildBookFilter は検索条件からWHERE句と引数を組み立てる。
func buildBookFilter(params model.BookSearchParams) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if q := strings.TrimSpace(params.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d)", n, n))
	}
	if params.CategoryID != "" {
		args = append(args, params.CategoryID)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(b.category_id = $%d OR b.category_id IN (SELECT id FROM categories WHERE parent_id = $%d))", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike はLIKEパターンの特殊文字をエスケープする。
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Search は条件に一致する書籍と総件数を返す。
func (r *PostgresBookRepo) Search(ctx context.Context, params model.BookSearchParams) ([]*model.Book, int, error) {
	where, args := buildBookFilter(params)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM books b`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}
	if total == 0 {
		return []*model.Book{}, 0, nil
	}

	pageArgs := append(append([]interface{}{}, args...), params.Limit, params.Offset)
	query := fmt.Sprintf(
		`SELECT b.id, b.category_id, b.title, b.author, b.isbn, b.price, b.published_at, b.created_at
		 FROM books b%s
		 ORDER BY b.title, b.id
		 LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}
	defer rows.Close()

	books := []*model.Book{}
	for rows.Next() {
		b := &model.Book{}
		var publishedAt sql.NullTime
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Title, &b.Author, &b.ISBN, &b.Price, &publishedAt, &b.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			b.PublishedAt = &t
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, total, nil
}

// compile-time interface check
var (
	_ CategoryRepository = (*PostgresCategoryRepo)(nil)
	_ BookRepository     = (*PostgresBookRepo)(nil)
)
