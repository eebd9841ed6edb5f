// Package persist hands validated records to a storage sink.
//
// The sink owns ids and transactions. Save validates first and passes the
// record on only when the error tree is empty, so a sink never sees an
// invalid record:
//
//	id, err := persist.Save(ctx, validator, store, b)
//	switch {
//	case errors.Is(err, graphbundle.ErrValidation):
//		// render err.(*validate.ValidationError).Errors
//	case errors.Is(err, graphbundle.ErrIntegrity):
//		// unique constraint hit while writing
//	}
package persist

import (
	"context"
	"fmt"

	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/validate"
)

// Sink stores validated records and returns the id of the root record.
// Constraint violations are reported as *graphbundle.IntegrityError.
type Sink interface {
	Save(ctx context.Context, rec *validate.Record) (string, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(context.Context, *validate.Record) (string, error)

// Save calls f(ctx, rec).
func (f SinkFunc) Save(ctx context.Context, rec *validate.Record) (string, error) {
	return f(ctx, rec)
}

// Save validates b and stores it. Validation errors are returned unchanged.
func Save(ctx context.Context, v *validate.Validator, sink Sink, b *bundle.Bundle) (string, error) {
	rec, err := v.Validate(b)
	if err != nil {
		return "", err
	}
	return sink.Save(ctx, rec)
}

// SaveAll validates every bundle before storing any of them, then saves
// them in order. It stops at the first failure; the error names the
// position of the offending bundle. Ids of the saved bundles are returned
// in input order.
func SaveAll(ctx context.Context, v *validate.Validator, sink Sink, bs []*bundle.Bundle) ([]string, error) {
	recs := make([]*validate.Record, len(bs))
	for i, b := range bs {
		rec, err := v.Validate(b)
		if err != nil {
			return nil, fmt.Errorf("bundle %d: %w", i, err)
		}
		recs[i] = rec
	}
	ids := make([]string, 0, len(recs))
	for i, rec := range recs {
		id, err := sink.Save(ctx, rec)
		if err != nil {
			return ids, fmt.Errorf("bundle %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
