// Package analytics implements the pure, stateless analytics core: summary
// statistics, KPI cards, chart projections and the fixed chemical-equipment
// aggregates. An Engine is built per request over an immutable table and
// performs no I/O and no mutation.
package analytics

import (
	"chemviz/domain/table"
)

// Engine computes analytics over a single in-memory table
type Engine struct {
	tbl *table.Table
}

// NewEngine builds an engine from raw rows, the declared column order and an
// optional column→type map. Missing types are inferred.
func NewEngine(rows []map[string]interface{}, columns []string, types map[string]table.ColumnType) *Engine {
	return &Engine{tbl: table.New(rows, columns, types)}
}

// FromTable wraps an already-constructed table
func FromTable(t *table.Table) *Engine {
	return &Engine{tbl: t}
}

// Table exposes the underlying table
func (e *Engine) Table() *table.Table { return e.tbl }

// NumericColumns lists Integer/Float columns in declared order
func (e *Engine) NumericColumns() []string { return e.tbl.NumericColumns() }

// CategoricalColumns lists String columns in declared order
func (e *Engine) CategoricalColumns() []string { return e.tbl.CategoricalColumns() }
