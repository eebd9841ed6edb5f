// Package field provides fluent builders for declaring the properties of an
// entity type.
//
// Property names are the bundle data keys (lowerCamelCase):
//
//	field.String("identifier")       // required, single string
//	field.Text("scopeAndContent")    // long free text
//
// # Field Kinds
//
//	field.String("name")
//	field.Text("biographicalHistory")
//	field.Int("priority")
//	field.Float("rating")
//	field.Bool("isPublic")
//	field.Enum("typeOfEntity").Values("person", "family", "corporateBody")
//	field.Date("startDate")          // YYYY, YYYY-MM or YYYY-MM-DD
//	field.Strings("languageOfMaterial")
//
// # Field Options
//
//	field.String("identifier").
//	    Unique().               // value must be unique per type in the store
//	    Optional().             // not mandatory
//	    Comment("Local identifier")
//
// Fields are mandatory unless marked Optional.
//
// # Validation
//
//	field.String("name").NotEmpty().MaxLen(1024)
//	field.String("languageCode").Match(regexp.MustCompile(`^[a-z]{3}$`))
//	field.Int("priority").Range(-1, 5)
//	field.Strings("otherFormsOfName").NotEmpty()
//
// String validators on a Strings field apply to every item. Builder
// misuse (a negative length, an enum without values) is reported through
// Descriptor.Err and rejected when the schema registry is built.
package field
