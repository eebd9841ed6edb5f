package validate_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/edge"
	"github.com/syssam/graphbundle/schema/field"
	"github.com/syssam/graphbundle/validate"
)

type Unit struct{ schema.Base }

func (Unit) Fields() []schema.Field {
	return []schema.Field{
		field.String("identifier").Unique().NotEmpty(),
		field.String("title"),
		field.Enum("scope").Optional().Values("high", "low"),
		field.Int("extent").Optional().Min(0),
		field.Strings("tags").Optional(),
	}
}

func (Unit) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("describes", "Description").Dependent(),
		edge.To("heldBy", "Holder").Unique(),
	}
}

type Description struct{ schema.Base }

func (Description) Fields() []schema.Field {
	return []schema.Field{
		field.String("name"),
		field.String("languageCode"),
	}
}

type Holder struct{ schema.Base }

func (Holder) Fields() []schema.Field {
	return []schema.Field{field.String("identifier").Unique()}
}

func newValidator(t *testing.T) *validate.Validator {
	t.Helper()
	reg, err := schema.NewRegistry(Unit{}, Description{}, Holder{})
	require.NoError(t, err)
	return validate.New(reg)
}

func description(name, lang string) *bundle.Bundle {
	b := bundle.New("Description").WithDataValue("languageCode", lang)
	if name != "" {
		b = b.WithDataValue("name", name)
	}
	return b
}

func validUnit() *bundle.Bundle {
	return bundle.New("Unit").
		WithDataValue("identifier", "c1").
		WithDataValue("title", "Papers").
		WithRelation("describes", description("One", "eng"), description("Een", "nld")).
		WithRelation("heldBy", bundle.New("Holder").WithID("r1").WithDataValue("identifier", "r1"))
}

func TestValidateSuccess(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	rec, err := v.Validate(validUnit().WithID("u1"))
	require.NoError(t, err)
	assert.Equal(t, graphbundle.EntityType("Unit"), rec.Type)
	assert.Equal(t, "u1", rec.ID)
	assert.Equal(t, map[string]any{"identifier": "c1", "title": "Papers"}, rec.Data)
	assert.Equal(t, map[string]string{"identifier": "c1"}, rec.UniqueValues())

	require.Len(t, rec.Relations, 3)
	assert.Equal(t, "describes", rec.Relations[0].Name)
	assert.Equal(t, graphbundle.Incoming, rec.Relations[0].Direction)
	assert.True(t, rec.Relations[0].Dependent)
	assert.Equal(t, "One", rec.Relations[0].Record.Data["name"])
	assert.Equal(t, "Een", rec.Relations[1].Record.Data["name"])
	assert.Equal(t, "heldBy", rec.Relations[2].Name)
	assert.False(t, rec.Relations[2].Dependent)
	assert.Equal(t, "r1", rec.Relations[2].Record.ID)
	assert.Len(t, rec.Targets("describes"), 2)
}

func TestValidateCanonicalValues(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	rec, err := v.Validate(validUnit().
		WithDataValue("title", "Cafe\u0301").
		WithDataValue("extent", 12.0).
		WithDataValue("tags", "letters"))
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", rec.Data["title"])
	assert.Equal(t, int64(12), rec.Data["extent"])
	assert.Equal(t, []any{"letters"}, rec.Data["tags"])
}

func TestValidateCompleteness(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	b := bundle.New("Unit").WithRelation("describes",
		description("", "eng"),
		description("Een", "nld"),
	)
	_, err := v.Validate(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, graphbundle.ErrValidation)

	var verr *validate.ValidationError
	require.True(t, errors.As(err, &verr))
	errs := verr.Errors
	assert.Equal(t, map[string][]string{
		"identifier": {validate.MsgMissing},
		"title":      {validate.MsgMissing},
	}, errs.Errors)
	require.Len(t, errs.Relations["describes"], 2)
	assert.Equal(t, map[string][]string{"name": {validate.MsgMissing}}, errs.Child("describes", 0).Errors)
	assert.True(t, errs.Child("describes", 1).IsEmpty())
	assert.Equal(t, 3, errs.Count())
	assert.Equal(t, "graphbundle: validation failed for Unit (3 errors)", err.Error())
	assert.Equal(t, []string{
		"identifier: missing mandatory field",
		"title: missing mandatory field",
		"describes[0]/name: missing mandatory field",
	}, verr.Messages())
}

func TestValidateWireShape(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	errs, err := v.Errors(bundle.New("Description").WithDataValue("name", "X"))
	require.NoError(t, err)
	out, err := json.Marshal(errs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":{"languageCode":["missing mandatory field"]},"relations":{}}`, string(out))
}

func TestValidateMessages(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	tests := []struct {
		name string
		b    *bundle.Bundle
		key  string
		want []string
	}{
		{
			name: "unknown property",
			b:    validUnit().WithDataValue("colour", "red"),
			key:  "colour",
			want: []string{validate.MsgUnknownProperty},
		},
		{
			name: "wrong kind",
			b:    validUnit().WithDataValue("title", int64(3)),
			key:  "title",
			want: []string{"expected string value, got number"},
		},
		{
			name: "enum",
			b:    validUnit().WithDataValue("scope", "medium"),
			key:  "scope",
			want: []string{`invalid value "medium": must be one of [high, low]`},
		},
		{
			name: "validator",
			b:    validUnit().WithDataValue("extent", -1),
			key:  "extent",
			want: []string{"must be at least 0"},
		},
		{
			name: "non integral",
			b:    validUnit().WithDataValue("extent", 2.5),
			key:  "extent",
			want: []string{"expected integer value, got 2.5"},
		},
		{
			name: "int overflow",
			b:    validUnit().WithDataValue("extent", json.Number("1e30")),
			key:  "extent",
			want: []string{field.MsgIntRange},
		},
		{
			name: "int overflow by one",
			b:    validUnit().WithDataValue("extent", json.Number("9223372036854775808")),
			key:  "extent",
			want: []string{field.MsgIntRange},
		},
		{
			name: "empty mandatory",
			b:    validUnit().WithDataValue("identifier", ""),
			key:  "identifier",
			want: []string{"must not be empty"},
		},
		{
			name: "unique relation",
			b: validUnit().WithRelation("heldBy",
				bundle.New("Holder").WithID("r1").WithDataValue("identifier", "r1"),
				bundle.New("Holder").WithID("r2").WithDataValue("identifier", "r2"),
			),
			key:  "heldBy",
			want: []string{validate.MsgTooMany},
		},
		{
			name: "wrong target type",
			b:    validUnit().WithRelation("heldBy", bundle.New("Description").WithDataValue("name", "x").WithDataValue("languageCode", "eng")),
			key:  "heldBy",
			want: []string{"relation must target Holder, got Description"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs, err := v.Errors(tt.b)
			require.NoError(t, err)
			require.False(t, errs.IsEmpty())
			assert.Equal(t, tt.want, errs.Errors[tt.key])
		})
	}
}

func TestValidateUnknownRelation(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	b := validUnit().WithRelation("mentions", bundle.New("Holder").WithDataValue("identifier", "ok"))
	_, err := v.Validate(b)
	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{validate.MsgUnknownRelation}, verr.Errors.Errors["mentions"])
	assert.NotContains(t, verr.Errors.Relations, "mentions")
	assert.Equal(t, 1, verr.Errors.Count())
}

func TestValidateFatal(t *testing.T) {
	t.Parallel()
	v := newValidator(t)

	_, err := v.Validate(bundle.New("Nope"))
	assert.True(t, graphbundle.IsUnknownType(err))
	assert.NotErrorIs(t, err, graphbundle.ErrValidation)

	_, err = v.Validate(validUnit().WithChild("describes", bundle.New("Nope")))
	assert.True(t, graphbundle.IsUnknownType(err))
	assert.Contains(t, err.Error(), "describes[2]")

	_, err = v.Validate(nil)
	assert.True(t, graphbundle.IsStructural(err))
}

// randomUnit builds a unit bundle that may violate the schema in several
// independent ways.
func randomUnit(r *rand.Rand) *bundle.Bundle {
	b := bundle.New("Unit")
	if r.IntN(4) > 0 {
		b = b.WithDataValue("identifier", fmt.Sprintf("c%d", r.IntN(100)))
	}
	if r.IntN(4) > 0 {
		b = b.WithDataValue("title", "Papers")
	}
	switch r.IntN(4) {
	case 0:
		b = b.WithDataValue("scope", "high")
	case 1:
		b = b.WithDataValue("scope", "sideways")
	}
	switch r.IntN(4) {
	case 0:
		b = b.WithDataValue("extent", r.IntN(10))
	case 1:
		b = b.WithDataValue("extent", "ten")
	}
	if r.IntN(8) == 0 {
		b = b.WithDataValue("colour", "red")
	}
	for range r.IntN(3) {
		d := bundle.New("Description")
		if r.IntN(4) > 0 {
			d = d.WithDataValue("name", "n")
		}
		if r.IntN(4) > 0 {
			d = d.WithDataValue("languageCode", "eng")
		}
		b = b.WithChild("describes", d)
	}
	if r.IntN(8) == 0 {
		b = b.WithRelation("mentions")
	}
	return b
}

func TestValidateEmptinessMatchesSuccess(t *testing.T) {
	t.Parallel()
	v := newValidator(t)
	r := rand.New(rand.NewPCG(1, 2))

	var ok, failed int
	for range 500 {
		b := randomUnit(r)
		errs, err := v.Errors(b)
		require.NoError(t, err)
		rec, err := v.Validate(b)
		if errs.IsEmpty() {
			require.NoError(t, err)
			require.NotNil(t, rec)
			ok++
		} else {
			require.ErrorIs(t, err, graphbundle.ErrValidation)
			require.Nil(t, rec)
			failed++
		}
	}
	assert.Positive(t, ok)
	assert.Positive(t, failed)
}
