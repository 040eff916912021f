// Package validation checks product payloads and ids before they reach the service.
// Every check reports a Validation failure carrying the exact client-facing messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"slices"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
	"github.com/abgdnv/productcatalog/internal/platform/web"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidCreate  = "Invalid product creation data."
	msgInvalidUpdate  = "Invalid product update data."
	msgNoUpdateFields = "No valid update fields provided."
	msgInvalidID      = "Invalid product ID format (must be a UUID)."

	productIDTag = "uuid_ci"
)

var productIDPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// productFields holds the raw decoded JSON values of a product payload.
// A nil field fails its first tag, so absent and null values are both rejected.
type productFields struct {
	Name        any `json:"name" validate:"json_string,min=1"`
	Description any `json:"description" validate:"json_string,min=1"`
	Price       any `json:"price" validate:"json_number,gt=0"`
	Category    any `json:"category" validate:"json_string,min=1"`
	InStock     any `json:"inStock" validate:"json_bool"`
}

// fieldMessage pairs a payload field with the messages reported when it is invalid.
type fieldMessage struct {
	field     string
	createMsg string
	updateMsg string
}

// fieldMessages is keyed by productFields field name. Violations follow the struct field order.
var fieldMessages = map[string]fieldMessage{
	"Name": {
		field:     "name",
		createMsg: "Name must be a non-empty string.",
		updateMsg: "Name must be a non-empty string if provided.",
	},
	"Description": {
		field:     "description",
		createMsg: "Description must be a non-empty string.",
		updateMsg: "Description must be a non-empty string if provided.",
	},
	"Price": {
		field:     "price",
		createMsg: "Price must be a positive number.",
		updateMsg: "Price must be a positive number if provided.",
	},
	"Category": {
		field:     "category",
		createMsg: "Category must be a non-empty string.",
		updateMsg: "Category must be a non-empty string if provided.",
	},
	"InStock": {
		field:     "inStock",
		createMsg: "inStock must be a boolean.",
		updateMsg: "inStock must be a boolean if provided.",
	},
}

// structFields lists the productFields field names in declaration order.
var structFields = []string{"Name", "Description", "Price", "Category", "InStock"}

// AllowedFields returns the product fields a client may set, in canonical order.
func AllowedFields() []string {
	fields := make([]string, 0, len(structFields))
	for _, name := range structFields {
		fields = append(fields, fieldMessages[name].field)
	}
	return fields
}

func fromPayload(p web.Payload) productFields {
	return productFields{
		Name:        p.Fields["name"],
		Description: p.Fields["description"],
		Price:       p.Fields["price"],
		Category:    p.Fields["category"],
		InStock:     p.Fields["inStock"],
	}
}

// kindValidator accepts a decoded JSON value of the given kind.
func kindValidator(kind reflect.Kind) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == kind
	}
}

// Validator checks product payloads and ids.
type Validator struct {
	validate *validator.Validate
	allowed  []string
}

// New creates a Validator.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// the tags are constants, registration can only fail on an empty tag
	_ = validate.RegisterValidation(productIDTag, func(fl validator.FieldLevel) bool {
		return productIDPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("json_string", kindValidator(reflect.String))
	_ = validate.RegisterValidation("json_number", kindValidator(reflect.Float64))
	_ = validate.RegisterValidation("json_bool", kindValidator(reflect.Bool))
	return &Validator{
		validate: validate,
		allowed:  AllowedFields(),
	}
}

// ID checks that id is a UUID in canonical 8-4-4-4-12 hex form, any letter case.
func (v *Validator) ID(id string) error {
	if err := v.validate.Var(id, productIDTag); err != nil {
		return apperr.Validation(msgInvalidID)
	}
	return nil
}

// Create checks a creation payload. All five fields are required; every violation is reported.
// Fields outside the allowed set are ignored.
func (v *Validator) Create(p web.Payload) error {
	fields := fromPayload(p)
	details, err := v.violations(v.validate.Struct(&fields), func(m fieldMessage) string { return m.createMsg })
	if err != nil {
		return err
	}
	if len(details) > 0 {
		return apperr.Validation(msgInvalidCreate, details...)
	}
	return nil
}

// Update checks a partial update payload. Unknown fields are reported first, in payload
// order, followed by the violations of the allowed fields that are present.
func (v *Validator) Update(p web.Payload) error {
	var details []string
	for _, key := range p.Keys {
		if !slices.Contains(v.allowed, key) {
			details = append(details, "Field '"+key+"' is not allowed for update.")
		}
	}

	var present []string
	for _, name := range structFields {
		if p.Has(fieldMessages[name].field) {
			present = append(present, name)
		}
	}

	if len(present) > 0 {
		fields := fromPayload(p)
		violations, err := v.violations(v.validate.StructPartial(&fields, present...), func(m fieldMessage) string { return m.updateMsg })
		if err != nil {
			return err
		}
		details = append(details, violations...)
	}

	if len(details) > 0 {
		return apperr.Validation(msgInvalidUpdate, details...)
	}
	if len(present) == 0 {
		return apperr.Validation(msgNoUpdateFields)
	}
	return nil
}

// violations turns the validator result into client messages, one per failing field.
func (v *Validator) violations(err error, message func(fieldMessage) string) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, apperr.Internal("product validation failed", err)
	}
	details := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		details = append(details, message(fieldMessages[fe.StructField()]))
	}
	return details, nil
}
