package books

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/internal/types"
)

const (
	table = "books"

	codeUniqueViolation = "23505"
)

var columns = []any{"isbn", "amazon_url", "author", "language", "pages", "publisher", "title", "year"}

func NewPGXRepository(pg *pgxpool.Pool, l *slog.Logger) Repository {
	return &pgxRepo{pg: pg, g: goqu.Dialect("postgres"), l: l}
}

type pgxRepo struct {
	pg *pgxpool.Pool
	g  goqu.DialectWrapper
	l  *slog.Logger
}

type pgxBook struct {
	Isbn      string `db:"isbn"`
	AmazonUrl string `db:"amazon_url"`
	Author    string `db:"author"`
	Language  string `db:"language"`
	Pages     int    `db:"pages"`
	Publisher string `db:"publisher"`
	Title     string `db:"title"`
	Year      int    `db:"year"`
}

func (b *pgxBook) intoCommon() *types.Book {
	return &types.Book{
		Isbn:      b.Isbn,
		AmazonUrl: b.AmazonUrl,
		Author:    b.Author,
		Language:  b.Language,
		Pages:     b.Pages,
		Publisher: b.Publisher,
		Title:     b.Title,
		Year:      b.Year,
	}
}

func notFound(err error) bool {
	return pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows)
}

func (p *pgxRepo) List(ctx context.Context) ([]*types.Book, error) {
	sql, params, err := p.g.From(table).
		Prepared(true).
		Select(columns...).
		Order(goqu.C("title").Asc(), goqu.C("isbn").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxBook

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	ret := make([]*types.Book, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, row.intoCommon())
	}

	return ret, nil
}

func (p *pgxRepo) GetByIsbn(ctx context.Context, isbn string) (*types.Book, error) {
	sql, params, err := p.g.From(table).
		Prepared(true).
		Select(columns...).
		Where(goqu.C("isbn").Eq(isbn)).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var row pgxBook

	err = pgxscan.Get(ctx, p.pg, &row, sql, params...)
	if err != nil {
		if notFound(err) {
			err = nil
		}
		return nil, err
	}

	return row.intoCommon(), nil
}

func (p *pgxRepo) Create(ctx context.Context, book *types.Book) (*types.Book, error) {
	sql, params, err := p.g.Insert(table).
		Prepared(true).
		Rows(pgxBook{
			Isbn:      book.Isbn,
			AmazonUrl: book.AmazonUrl,
			Author:    book.Author,
			Language:  book.Language,
			Pages:     book.Pages,
			Publisher: book.Publisher,
			Title:     book.Title,
			Year:      book.Year,
		}).
		Returning(columns...).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var row pgxBook

	err = pgxscan.Get(ctx, p.pg, &row, sql, params...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			p.l.DebugContext(ctx, "Rejected duplicate isbn "+book.Isbn)
			return nil, fmt.Errorf("inserting book %s: %w", book.Isbn, ErrDuplicateIsbn)
		}
		return nil, err
	}

	return row.intoCommon(), nil
}

func (p *pgxRepo) Update(ctx context.Context, isbn string, fields Fields) (*types.Book, error) {
	rec := goqu.Record{}
	for _, col := range MutableColumns {
		if val, ok := fields[col]; ok {
			rec[col] = val
		}
	}

	// Nothing supplied: still rewrite the row so the statement returns it
	if len(rec) == 0 {
		rec["isbn"] = goqu.I("isbn")
	}

	sql, params, err := p.g.Update(table).
		Prepared(true).
		Set(rec).
		Where(goqu.C("isbn").Eq(isbn)).
		Returning(columns...).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var row pgxBook

	err = pgxscan.Get(ctx, p.pg, &row, sql, params...)
	if err != nil {
		if notFound(err) {
			err = nil
		}
		return nil, err
	}

	return row.intoCommon(), nil
}

func (p *pgxRepo) Delete(ctx context.Context, isbn string) (bool, error) {
	sql, params, err := p.g.Delete(table).
		Prepared(true).
		Where(goqu.C("isbn").Eq(isbn)).
		ToSQL()
	if err != nil {
		return false, err
	}

	tag, err := p.pg.Exec(ctx, sql, params...)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
