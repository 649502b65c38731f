// Package dataset holds the in-memory tabular container the matching
// pipeline operates on: one row per unit, named numeric covariate columns,
// a binary treatment indicator and an outcome value. Datasets are logically
// immutable; every operation returns a new value and never modifies its
// receiver.
package dataset

import (
	"fmt"
	"math"
)

// ScoreColumn is the name of the derived propensity-score column added by
// WithScores.
const ScoreColumn = "propensity_score"

// Dataset is an ordered collection of unit records sharing one column
// schema. Row identifiers are the original row positions and survive
// Subset and Gather, so derived datasets can always be traced back to the
// source rows.
//
// Accessors return internal slices for efficiency; callers must not
// mutate them.
type Dataset struct {
	names      []string
	cols       map[string][]float64
	ids        []int
	covariates []string
	treatment  string
	outcome    string
	scored     bool
}

// Load builds a Dataset from row-major data and a column-name header.
// covariates, treatment and outcome name columns of rows; Load fails with
// *SchemaError if any named column is missing, a covariate holds a
// non-finite value, or the treatment column is not strictly 0/1.
func Load(rows [][]float64, names []string, covariates []string, treatment, outcome string) (*Dataset, error) {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, &SchemaError{Column: name, Reason: "not present in data"}
		}
		return i, nil
	}

	for _, c := range append([]string{treatment, outcome}, covariates...) {
		if _, err := lookup(c); err != nil {
			return nil, err
		}
	}

	cols := make(map[string][]float64, len(names))
	for _, n := range names {
		cols[n] = make([]float64, len(rows))
	}
	ids := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, &SchemaError{Reason: fmt.Sprintf("row %d has %d values, header has %d columns", i, len(row), len(names))}
		}
		for j, n := range names {
			cols[n][i] = row[j]
		}
		ids[i] = i
	}

	for _, c := range covariates {
		for _, v := range cols[c] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &SchemaError{Column: c, Reason: "covariate values must be finite numbers"}
			}
		}
	}
	for _, v := range cols[treatment] {
		if v != 0 && v != 1 {
			return nil, &SchemaError{Column: treatment, Reason: "treatment indicator must be 0 or 1"}
		}
	}

	return &Dataset{
		names:      append([]string(nil), names...),
		cols:       cols,
		ids:        ids,
		covariates: append([]string(nil), covariates...),
		treatment:  treatment,
		outcome:    outcome,
	}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.ids) }

// Names returns the column names in order.
func (d *Dataset) Names() []string { return d.names }

// Covariates returns the covariate column names in order.
func (d *Dataset) Covariates() []string { return d.covariates }

// TreatmentName returns the name of the treatment column.
func (d *Dataset) TreatmentName() string { return d.treatment }

// OutcomeName returns the name of the outcome column.
func (d *Dataset) OutcomeName() string { return d.outcome }

// Column returns the values of a named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, &SchemaError{Column: name, Reason: "not present in data"}
	}
	return col, nil
}

// ID returns the original row identifier of the i-th row.
func (d *Dataset) ID(i int) int { return d.ids[i] }

// IDs returns the original row identifiers in row order.
func (d *Dataset) IDs() []int { return d.ids }

// Treated reports whether the i-th row is a treated unit.
func (d *Dataset) Treated(i int) bool { return d.cols[d.treatment][i] == 1 }

// Treatment returns the treatment indicator column.
func (d *Dataset) Treatment() []float64 { return d.cols[d.treatment] }

// Outcome returns the outcome column.
func (d *Dataset) Outcome() []float64 { return d.cols[d.outcome] }

// Scored reports whether the propensity-score column has been set.
func (d *Dataset) Scored() bool { return d.scored }

// Scores returns the propensity-score column. It is only valid after
// WithScores; before that it returns nil.
func (d *Dataset) Scores() []float64 {
	if !d.scored {
		return nil
	}
	return d.cols[ScoreColumn]
}

// CovariateMatrix returns the covariates as a row-major matrix, columns
// ordered as Covariates().
func (d *Dataset) CovariateMatrix() [][]float64 {
	X := make([][]float64, d.Len())
	for i := range X {
		row := make([]float64, len(d.covariates))
		for j, c := range d.covariates {
			row[j] = d.cols[c][i]
		}
		X[i] = row
	}
	return X
}

// Subset returns a new Dataset restricted to the rows for which keep
// returns true. Row identifiers are preserved.
func (d *Dataset) Subset(keep func(i int) bool) *Dataset {
	var rows []int
	for i := range d.ids {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return d.take(rows)
}

// TreatedSubset returns the treated units.
func (d *Dataset) TreatedSubset() *Dataset {
	return d.Subset(func(i int) bool { return d.Treated(i) })
}

// ControlSubset returns the untreated units.
func (d *Dataset) ControlSubset() *Dataset {
	return d.Subset(func(i int) bool { return !d.Treated(i) })
}

// WithColumn returns a new Dataset with the named column added or
// replaced. Fails with *ShapeError if the value count does not match the
// row count.
func (d *Dataset) WithColumn(name string, values []float64) (*Dataset, error) {
	if len(values) != d.Len() {
		return nil, &ShapeError{Column: name, Want: d.Len(), Got: len(values)}
	}
	nd := d.clone()
	if _, exists := nd.cols[name]; !exists {
		nd.names = append(nd.names, name)
	}
	nd.cols[name] = append([]float64(nil), values...)
	return nd, nil
}

// WithScores returns a new Dataset with the propensity-score column set
// for every row at once. The score column is derived: it exists for all
// rows or for none.
func (d *Dataset) WithScores(scores []float64) (*Dataset, error) {
	nd, err := d.WithColumn(ScoreColumn, scores)
	if err != nil {
		return nil, err
	}
	nd.scored = true
	return nd, nil
}

// Gather returns a new Dataset whose rows are the units with the given
// original identifiers, in the given order. An identifier may appear more
// than once; the resulting dataset then contains the row once per
// occurrence. This is how the matched dataset is materialized from a set
// of pairings.
func (d *Dataset) Gather(ids []int) (*Dataset, error) {
	byID := make(map[int]int, d.Len())
	for i, id := range d.ids {
		byID[id] = i
	}
	rows := make([]int, len(ids))
	for i, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, &SchemaError{Column: "", Reason: "unknown row identifier in gather"}
		}
		rows[i] = r
	}
	return d.take(rows), nil
}

// take builds a new Dataset from the given row indices (duplicates
// allowed).
func (d *Dataset) take(rows []int) *Dataset {
	nd := &Dataset{
		names:      d.names,
		cols:       make(map[string][]float64, len(d.names)),
		ids:        make([]int, len(rows)),
		covariates: d.covariates,
		treatment:  d.treatment,
		outcome:    d.outcome,
		scored:     d.scored,
	}
	for _, n := range d.names {
		src := d.cols[n]
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = src[r]
		}
		nd.cols[n] = col
	}
	for i, r := range rows {
		nd.ids[i] = d.ids[r]
	}
	return nd
}

// clone makes a shallow-schema, deep-column copy.
func (d *Dataset) clone() *Dataset {
	nd := &Dataset{
		names:      append([]string(nil), d.names...),
		cols:       make(map[string][]float64, len(d.cols)),
		ids:        append([]int(nil), d.ids...),
		covariates: d.covariates,
		treatment:  d.treatment,
		outcome:    d.outcome,
		scored:     d.scored,
	}
	for n, col := range d.cols {
		nd.cols[n] = append([]float64(nil), col...)
	}
	return nd
}
