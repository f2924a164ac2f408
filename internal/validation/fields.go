package validation

// FieldType is the JSON type a body field must have.
type FieldType string

const (
	Integer FieldType = "integer"
	String  FieldType = "string"
)

// Field is one entry of a record's wire shape.
type Field struct {
	Name string
	Type FieldType
}

// Field lists in serialization order.
var (
	UserFields = []Field{
		{"id", Integer},
		{"first_name", String},
		{"last_name", String},
		{"age", Integer},
		{"email", String},
		{"role", String},
		{"phone", String},
	}

	OrderFields = []Field{
		{"id", Integer},
		{"name", String},
		{"description", String},
		{"start_date", String},
		{"end_date", String},
		{"address", String},
		{"price", Integer},
		{"customer_id", Integer},
		{"executor_id", Integer},
	}

	OfferFields = []Field{
		{"id", Integer},
		{"order_id", Integer},
		{"executor_id", Integer},
	}
)
