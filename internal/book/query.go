package book

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
)

const (
	tableBooks = "books"
	colID      = "id"
	colTitle   = "title"
	colAuthor  = "author"
	colYear    = "year"
	colISBN    = "isbn"
)

var (
	dialect     = goqu.Dialect("postgres")
	bookColumns = []any{colID, colTitle, colAuthor, colYear, colISBN}
)

func insertQuery(in Input) (string, []any, error) {
	year := 0
	if in.Year != nil {
		year = *in.Year
	}
	return dialect.Insert(tableBooks).
		Rows(goqu.Record{
			colTitle:  in.Title,
			colAuthor: in.Author,
			colYear:   year,
			colISBN:   in.ISBN,
		}).
		Returning(bookColumns...).
		Prepared(true).
		ToSQL()
}

func selectByIDQuery(id int64) (string, []any, error) {
	return dialect.From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
}

func selectAllQuery() (string, []any, error) {
	return dialect.From(tableBooks).
		Select(bookColumns...).
		Order(goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()
}

// updateQuery must not be called with an empty patch.
func updateQuery(id int64, p Patch) (string, []any, error) {
	return dialect.Update(tableBooks).
		Set(patchRecord(p)).
		Where(goqu.C(colID).Eq(id)).
		Returning(bookColumns...).
		Prepared(true).
		ToSQL()
}

func deleteQuery(id int64) (string, []any, error) {
	return dialect.Delete(tableBooks).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
}

func patchRecord(p Patch) goqu.Record {
	rec := goqu.Record{}
	if p.Title != nil {
		rec[colTitle] = *p.Title
	}
	if p.Author != nil {
		rec[colAuthor] = *p.Author
	}
	if p.Year != nil {
		rec[colYear] = *p.Year
	}
	if p.ISBN != nil {
		rec[colISBN] = *p.ISBN
	}
	return rec
}
