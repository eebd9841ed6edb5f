// Package archival declares the built-in archival description model:
// documentary units, repositories and historical agents, each with
// per-language descriptions, plus the dependent records those carry.
package archival

import (
	"regexp"
	"sync"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/edge"
	"github.com/syssam/graphbundle/schema/field"
	"github.com/syssam/graphbundle/schema/mixin"
)

// Entity type names.
const (
	TypeCountry                    graphbundle.EntityType = "Country"
	TypeRepository                 graphbundle.EntityType = "Repository"
	TypeRepositoryDescription      graphbundle.EntityType = "RepositoryDescription"
	TypeAddress                    graphbundle.EntityType = "Address"
	TypeDocumentaryUnit            graphbundle.EntityType = "DocumentaryUnit"
	TypeDocumentaryUnitDescription graphbundle.EntityType = "DocumentaryUnitDescription"
	TypeHistoricalAgent            graphbundle.EntityType = "HistoricalAgent"
	TypeHistoricalAgentDescription graphbundle.EntityType = "HistoricalAgentDescription"
	TypeDatePeriod                 graphbundle.EntityType = "DatePeriod"
	TypeMaintenanceEvent           graphbundle.EntityType = "MaintenanceEvent"
	TypeAccessPoint                graphbundle.EntityType = "AccessPoint"
)

// Country is a top-level grouping of repositories.
type Country struct{ schema.Base }

var countryCode = regexp.MustCompile(`^[a-z]{2}$`)

func (Country) Fields() []schema.Field {
	return []schema.Field{
		field.String("identifier").Unique().Match(countryCode).Comment("ISO 3166-1 alpha-2 code"),
		field.Text("history").Optional(),
		field.Text("situation").Optional(),
	}
}

// Repository is an institution holding archival material.
type Repository struct{ schema.Base }

func (Repository) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.Identified{},
		mixin.Described{Description: TypeRepositoryDescription},
	}
}

func (Repository) Fields() []schema.Field {
	return []schema.Field{
		field.Int("priority").Optional().Range(-1, 5),
	}
}

func (Repository) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("hasCountry", TypeCountry).Unique().WhenNotLite(),
	}
}

// RepositoryDescription is an ISDIAH description of a repository.
type RepositoryDescription struct{ schema.Base }

func (RepositoryDescription) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.Localized{},
		mixin.Maintained{},
		mixin.AccessPoints{},
	}
}

func (RepositoryDescription) Fields() []schema.Field {
	return []schema.Field{
		field.Strings("otherFormsOfName").Optional().NotEmpty(),
		field.Strings("parallelFormsOfName").Optional().NotEmpty(),
		field.Enum("typeOfEntity").Optional().Values("national", "regional", "municipal", "religious", "university", "business", "private", "other"),
		field.Text("history").Optional(),
		field.Text("geoculturalContext").Optional(),
		field.Text("holdings").Optional(),
		field.Text("openingTimes").Optional(),
	}
}

func (RepositoryDescription) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("hasAddress", TypeAddress).Dependent(),
	}
}

// contact holds the contact details of an address.
type contact struct{ mixin.Schema }

func (contact) Fields() []schema.Field {
	return []schema.Field{
		field.Strings("email"),
		field.Strings("telephone"),
		field.Strings("fax"),
		field.Strings("webpage"),
	}
}

// Address is a postal address with contact details.
type Address struct{ schema.Base }

func (Address) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.OptionalFields(contact{}),
	}
}

func (Address) Fields() []schema.Field {
	return []schema.Field{
		field.String("name").Optional(),
		field.String("contactPerson").Optional(),
		field.String("street").Optional(),
		field.String("municipality").Optional(),
		field.String("postalCode").Optional().MaxLen(16),
		field.String("countryCode").Optional().Match(countryCode),
	}
}

// DocumentaryUnit is a unit of archival material: a fonds, a series, a
// file or an item.
type DocumentaryUnit struct{ schema.Base }

func (DocumentaryUnit) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.Identified{},
		mixin.Described{Description: TypeDocumentaryUnitDescription},
	}
}

func (DocumentaryUnit) Fields() []schema.Field {
	return []schema.Field{
		field.Strings("otherIdentifiers").Optional().NotEmpty(),
		field.Enum("copyrightStatus").Optional().Values("yes", "no", "unknown"),
		field.Enum("scope").Optional().Values("high", "medium", "low"),
	}
}

func (DocumentaryUnit) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("heldBy", TypeRepository).Unique().WhenNotLite(),
		edge.To("childOf", TypeDocumentaryUnit).Unique().IfBelowDepth(2),
	}
}

// DocumentaryUnitDescription is an ISAD(G) description of a unit.
type DocumentaryUnitDescription struct{ schema.Base }

func (DocumentaryUnitDescription) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.Localized{},
		mixin.Temporal{},
		mixin.Maintained{},
		mixin.AccessPoints{},
	}
}

func (DocumentaryUnitDescription) Fields() []schema.Field {
	return []schema.Field{
		field.Enum("levelOfDescription").Optional().Values("fonds", "subfonds", "collection", "series", "subseries", "recordgrp", "file", "item", "otherlevel"),
		field.Text("scopeAndContent").Optional(),
		field.Text("extentAndMedium").Optional(),
		field.Text("archivalHistory").Optional(),
		field.Text("acquisition").Optional(),
		field.Text("conditionsOfAccess").Optional(),
		field.Strings("languageOfMaterial").Optional().Match(languageCode),
		field.Strings("scriptOfMaterial").Optional(),
	}
}

// HistoricalAgent is a person, family or corporate body.
type HistoricalAgent struct{ schema.Base }

func (HistoricalAgent) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.Identified{},
		mixin.Described{Description: TypeHistoricalAgentDescription},
	}
}

// HistoricalAgentDescription is an ISAAR(CPF) description of an agent.
type HistoricalAgentDescription struct{ schema.Base }

func (HistoricalAgentDescription) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.Localized{},
		mixin.Temporal{},
		mixin.Maintained{},
		mixin.AccessPoints{},
	}
}

func (HistoricalAgentDescription) Fields() []schema.Field {
	return []schema.Field{
		field.Enum("typeOfEntity").Values("person", "family", "corporateBody"),
		field.Strings("otherFormsOfName").Optional().NotEmpty(),
		field.Text("biographicalHistory").Optional(),
		field.Text("functions").Optional(),
		field.Text("place").Optional(),
	}
}

// DatePeriod is a date range attached to a description.
type DatePeriod struct{ schema.Base }

func (DatePeriod) Fields() []schema.Field {
	return []schema.Field{
		field.Date("startDate"),
		field.Date("endDate").Optional(),
		field.Enum("type").Optional().Values("creation", "existence"),
		field.Enum("precision").Optional().Values("year", "quarter", "month", "week", "day"),
		field.String("description").Optional(),
	}
}

// MaintenanceEvent records one change in the history of a description.
type MaintenanceEvent struct{ schema.Base }

func (MaintenanceEvent) Fields() []schema.Field {
	return []schema.Field{
		field.Enum("eventType").Values("created", "revised", "deleted", "cancelled", "derived", "updated"),
		field.Date("date").Optional(),
		field.String("agentType").Optional(),
		field.Text("source").Optional(),
	}
}

// AccessPoint is a subject, place or name heading of a description.
type AccessPoint struct{ schema.Base }

func (AccessPoint) Fields() []schema.Field {
	return []schema.Field{
		field.String("name").NotEmpty(),
		field.Enum("type").Values("subject", "place", "person", "family", "corporateBody", "genre", "creator"),
		field.Text("description").Optional(),
	}
}

var languageCode = regexp.MustCompile(`^[a-z]{3}$`)

// Definitions returns the definitions of every archival type.
func Definitions() []schema.Interface {
	return []schema.Interface{
		Country{},
		Repository{},
		RepositoryDescription{},
		Address{},
		DocumentaryUnit{},
		DocumentaryUnitDescription{},
		HistoricalAgent{},
		HistoricalAgentDescription{},
		DatePeriod{},
		MaintenanceEvent{},
		AccessPoint{},
	}
}

var registry = sync.OnceValues(func() (*schema.Registry, error) {
	return schema.NewRegistry(Definitions()...)
})

// Registry returns the shared registry of the archival model.
func Registry() (*schema.Registry, error) {
	return registry()
}
