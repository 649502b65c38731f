package dataset

import "fmt"

// SchemaError reports a malformed input schema: a referenced column is
// missing, a covariate is not numeric, or the treatment column is not
// binary.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset: column %q: %s", e.Column, e.Reason)
}

// ShapeError reports a column whose length does not match the dataset's
// row count.
type ShapeError struct {
	Column string
	Want   int
	Got    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("dataset: column %q has %d values, dataset has %d rows", e.Column, e.Got, e.Want)
}
