// Package repo provides postgres access for datasets
package repo

import (
	"context"
	_ "embed"
	"encoding/json"
	"time"

	"customerlens/internal/core/normalize"
	"customerlens/internal/core/table"
	"customerlens/internal/modkit/repokit"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/store"
	"customerlens/internal/services/datasets/domain"

	"github.com/google/uuid"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL the repo expects
func Schema() string { return schema }

// Migrate applies the schema, every statement is idempotent
func Migrate(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, schema)
	return perr.FromPostgres(err, "apply datasets schema")
}

// Repo is the persistence surface for datasets
type Repo interface {
	InsertDataset(ctx context.Context, d domain.Dataset) error
	CopyCustomers(ctx context.Context, rows []domain.CustomerRow) (int64, error)
	GetDataset(ctx context.Context, id uuid.UUID) (domain.Dataset, error)
	ListDatasets(ctx context.Context, limit int) ([]domain.Dataset, error)
	Customers(ctx context.Context, id uuid.UUID) ([]normalize.Customer, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// CustomerCols is the COPY column order of CustomerValues
var CustomerCols = []string{"dataset_id", "ord", "age", "age_token", "salutation", "gender", "attrs"}

// CustomerValues flattens a row in CustomerCols order, an unknown age is NULL
// the salutation is stored sanitized, gender was already derived from the raw token
func CustomerValues(r domain.CustomerRow) ([]any, error) {
	var age any
	if !r.Age.IsUnknown() {
		age = int64(r.Age.Years)
	}
	attrs, err := attrsJSON(r.Attrs)
	if err != nil {
		return nil, err
	}
	return []any{[16]byte(r.DatasetID), int32(r.Ord), age, r.Age.String(), normalize.Sanitize(r.Salutation), r.Gender.String(), attrs}, nil
}

func attrsJSON(as []normalize.Attr) (string, error) {
	m := make(map[string]string, len(as))
	for _, a := range as {
		m[normalize.Sanitize(a.Name)] = normalize.Sanitize(a.Value)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode attrs")
	}
	return string(b), nil
}

// storedDataset sanitizes the header derived text of d so postgres accepts it
func storedDataset(d domain.Dataset) domain.Dataset {
	d.Name = normalize.Sanitize(d.Name)
	d.Columns.Age = normalize.Sanitize(d.Columns.Age)
	d.Columns.Salutation = normalize.Sanitize(d.Columns.Salutation)
	d.Columns.Gender = normalize.Sanitize(d.Columns.Gender)
	names := make([]string, len(d.Names))
	for i, n := range d.Names {
		names[i] = normalize.Sanitize(n)
	}
	d.Names = names
	return d
}

func (r *queries) InsertDataset(ctx context.Context, d domain.Dataset) error {
	d = storedDataset(d)
	cols, err := json.Marshal(d.Columns)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode columns")
	}
	genders, err := json.Marshal(d.Genders)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode genders")
	}
	const sql = `
insert into datasets (id, name, columns, names, rows, known_ages, genders, created_at)
values ($1::uuid, $2, $3::jsonb, $4, $5, $6, $7::jsonb, $8)
`
	err = store.ExecOne(ctx, r.q, sql,
		d.ID.String(), d.Name, string(cols), d.Names, d.Rows, d.KnownAges, string(genders), d.CreatedAt)
	return perr.FromPostgresWithField(err, "insert dataset")
}

func (r *queries) CopyCustomers(ctx context.Context, rows []domain.CustomerRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	data := make([][]any, len(rows))
	for i, row := range rows {
		vals, err := CustomerValues(row)
		if err != nil {
			return 0, err
		}
		data[i] = vals
	}
	n, err := r.q.CopyFrom(ctx, "customers", CustomerCols, data)
	if perr.IsForeignKeyViolation(err) {
		return n, perr.WithField(perr.NotFoundf("dataset %s not found", rows[0].DatasetID), "dataset_id")
	}
	if err != nil {
		return n, perr.FromPostgres(err, "copy customers")
	}
	return n, nil
}

const datasetCols = `id::text, name, columns::text, names, rows, known_ages, genders::text, created_at`

func scanDataset(row store.Row) (domain.Dataset, error) {
	var (
		d                 domain.Dataset
		id, cols, genders string
		rows, known       int32
		created           time.Time
	)
	if err := row.Scan(&id, &d.Name, &cols, &d.Names, &rows, &known, &genders, &created); err != nil {
		return d, perr.FromPostgres(err, "scan dataset")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return d, perr.Wrap(err, perr.ErrorCodeDB, "parse dataset id")
	}
	d.ID = parsed
	d.Rows, d.KnownAges, d.CreatedAt = int(rows), int(known), created.UTC()
	if err := json.Unmarshal([]byte(cols), &d.Columns); err != nil {
		return d, perr.Wrap(err, perr.ErrorCodeDB, "decode columns")
	}
	if err := json.Unmarshal([]byte(genders), &d.Genders); err != nil {
		return d, perr.Wrap(err, perr.ErrorCodeDB, "decode genders")
	}
	return d, nil
}

func (r *queries) GetDataset(ctx context.Context, id uuid.UUID) (domain.Dataset, error) {
	d, err := store.One(ctx, r.q, scanDataset,
		`select `+datasetCols+` from datasets where id = $1::uuid`, id.String())
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return d, perr.WithField(perr.NotFoundf("dataset %s not found", id), "id")
	}
	return d, err
}

func (r *queries) ListDatasets(ctx context.Context, limit int) ([]domain.Dataset, error) {
	if limit <= 0 {
		limit = 100
	}
	out, err := store.Many(ctx, r.q, scanDataset,
		`select `+datasetCols+` from datasets order by created_at desc, id limit $1`, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list datasets")
	}
	if out == nil {
		out = []domain.Dataset{}
	}
	return out, nil
}

func (r *queries) Customers(ctx context.Context, id uuid.UUID) ([]normalize.Customer, error) {
	const sql = `
select age_token, salutation, gender, attrs::text
from customers
where dataset_id = $1::uuid
order by ord
`
	return store.Many(ctx, r.q, scanCustomer, sql, id.String())
}

// scanCustomer reads the age back from age_token, the numeric column only serves queries
func scanCustomer(row store.Row) (normalize.Customer, error) {
	var (
		c                        normalize.Customer
		token, gender, attrsText string
	)
	if err := row.Scan(&token, &c.Salutation, &gender, &attrsText); err != nil {
		return c, perr.FromPostgres(err, "scan customer")
	}
	c.Age = normalize.ParseAge(token)
	c.Gender = normalize.ParseGender(gender)
	m := map[string]string{}
	if err := json.Unmarshal([]byte(attrsText), &m); err != nil {
		return c, perr.Wrap(err, perr.ErrorCodeDB, "decode attrs")
	}
	c.Attrs = make([]normalize.Attr, 0, len(m))
	for k, v := range m {
		c.Attrs = append(c.Attrs, normalize.Attr{Name: k, Value: v})
	}
	return c, nil
}

// TableOf rebuilds a normalized table for d from its stored customers
func TableOf(d domain.Dataset, cs []normalize.Customer) (*table.Table, error) {
	return table.FromCustomers(d.Names, cs, d.Columns)
}
