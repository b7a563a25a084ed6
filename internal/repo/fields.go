package repo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rogerio-castellano/inventory-app/internal/db"
)

// Fields is a write request. A nil member is absent and left untouched by
// updates; explicit JSON nulls are remembered so they can be rejected.
type Fields struct {
	Name          *string `json:"name,omitempty"`
	Price         *int64  `json:"price,omitempty"`
	Quantity      *int64  `json:"quantity,omitempty"`
	SupplierName  *string `json:"supplier_name,omitempty"`
	SupplierPhone *string `json:"supplier_phone,omitempty"`

	nulls   []string
	unknown []string
}

func String(s string) *string { return &s }

func Int(n int64) *int64 { return &n }

// SetNull marks field as present with a null value.
func (f *Fields) SetNull(field string) {
	switch field {
	case db.FieldName:
		f.Name = nil
	case db.FieldPrice:
		f.Price = nil
	case db.FieldQuantity:
		f.Quantity = nil
	case db.FieldSupplierName:
		f.SupplierName = nil
	case db.FieldSupplierPhone:
		f.SupplierPhone = nil
	default:
		f.unknown = append(f.unknown, field)
		return
	}
	if !slices.Contains(f.nulls, field) {
		f.nulls = append(f.nulls, field)
	}
}

// IsEmpty reports whether the request carries no field at all.
func (f Fields) IsEmpty() bool {
	return f.Name == nil && f.Price == nil && f.Quantity == nil &&
		f.SupplierName == nil && f.SupplierPhone == nil &&
		len(f.nulls) == 0 && len(f.unknown) == 0
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = Fields{}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		value := raw[key]
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			f.SetNull(key)
			continue
		}

		var target any
		switch key {
		case db.FieldName:
			target = &f.Name
		case db.FieldPrice:
			target = &f.Price
		case db.FieldQuantity:
			target = &f.Quantity
		case db.FieldSupplierName:
			target = &f.SupplierName
		case db.FieldSupplierPhone:
			target = &f.SupplierPhone
		default:
			f.unknown = append(f.unknown, key)
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

type assignment struct {
	column string
	value  any
}

// assignments lists the present fields in table order.
func (f Fields) assignments() []assignment {
	var out []assignment
	if f.Name != nil {
		out = append(out, assignment{db.ColumnName, *f.Name})
	}
	if f.Price != nil {
		out = append(out, assignment{db.ColumnPrice, *f.Price})
	}
	if f.Quantity != nil {
		out = append(out, assignment{db.ColumnQuantity, *f.Quantity})
	}
	if f.SupplierName != nil {
		out = append(out, assignment{db.ColumnSupplier, *f.SupplierName})
	}
	if f.SupplierPhone != nil {
		out = append(out, assignment{db.ColumnSupplierPhone, *f.SupplierPhone})
	}
	return out
}

// ValidationError names the offending field and why it was refused.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// ValidationErrors is returned before any write is attempted.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e ValidationErrors) Has(field string) bool {
	return slices.ContainsFunc(e, func(ve ValidationError) bool { return ve.Field == field })
}

// AsValidationErrors unwraps err into ValidationErrors when possible.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type createRules struct {
	Name          *string `json:"name" validate:"required,min=1"`
	Price         *int64  `json:"price" validate:"required,min=0"`
	Quantity      *int64  `json:"quantity" validate:"omitempty,min=0"`
	SupplierName  *string `json:"supplier_name" validate:"required,min=1"`
	SupplierPhone *string `json:"supplier_phone" validate:"required,min=1"`
}

type updateRules struct {
	Price    *int64 `json:"price" validate:"omitempty,min=0"`
	Quantity *int64 `json:"quantity" validate:"omitempty,min=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateCreate(f Fields) ValidationErrors {
	return collectErrors(f, createRules{
		Name:          f.Name,
		Price:         f.Price,
		Quantity:      f.Quantity,
		SupplierName:  f.SupplierName,
		SupplierPhone: f.SupplierPhone,
	})
}

// validateUpdate only checks fields present in the request. Present strings
// may be empty; they must not be null.
func validateUpdate(f Fields) ValidationErrors {
	return collectErrors(f, updateRules{Price: f.Price, Quantity: f.Quantity})
}

func collectErrors(f Fields, rules any) ValidationErrors {
	var errs ValidationErrors
	add := func(field, reason string) {
		if !errs.Has(field) {
			errs = append(errs, ValidationError{Field: field, Reason: reason})
		}
	}

	for _, field := range f.unknown {
		if field == db.FieldID {
			add(field, "is assigned by storage and cannot be written")
			continue
		}
		add(field, "is not a product field")
	}
	for _, field := range f.nulls {
		add(field, "must not be null")
	}

	err := validate.Struct(rules)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			add(fe.Field(), reasonFor(fe))
		}
	}
	return errs
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Field() == db.FieldPrice || fe.Field() == db.FieldQuantity {
			return "must not be negative"
		}
		return "must not be empty"
	}
	return "is invalid"
}
