// Package domain holds the datasets types shared by repo, service and transport
package domain

import (
	"time"

	"customerlens/internal/core/normalize"
	"customerlens/internal/core/table"

	"github.com/google/uuid"
)

// Dataset is one ingested and normalized customer file
type Dataset struct {
	ID        uuid.UUID      `json:"id" example:"6f1c2b1e-6a7e-4f5e-9a44-0c6d7c1e4a10"`
	Name      string         `json:"name" example:"customers-2024"`
	Rows      int            `json:"rows" example:"1200"`
	KnownAges int            `json:"known_ages" example:"1100"`
	Genders   map[string]int `json:"genders"`
	Columns   table.Columns  `json:"columns"`
	Names     []string       `json:"names" example:"age,salutation,name,city,gender"`
	CreatedAt time.Time      `json:"created_at"`
}

// SetSummary copies the counts of s onto d
func (d *Dataset) SetSummary(s table.Summary) {
	d.Rows = s.Rows
	d.KnownAges = s.KnownAges
	d.Genders = make(map[string]int, len(s.Genders))
	for g, n := range s.Genders {
		d.Genders[g.String()] = n
	}
}

// CustomerRow is one stored customer, Ord keeps the source order
type CustomerRow struct {
	DatasetID uuid.UUID
	Ord       int
	normalize.Customer
}

// IngestInput names the upload and the column roles
type IngestInput struct {
	Name    string        `json:"name" validate:"required,max=200" example:"customers-2024"`
	Columns table.Columns `json:"columns"`
}
