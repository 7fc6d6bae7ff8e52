package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidEmployee   = goerr.New("invalid employee")
	ErrInvalidDepartment = goerr.New("invalid department")
)

// Context keys for error values
const (
	FieldKey         = "field"
	RuleKey          = "rule"
	InvalidFieldsKey = "invalid_fields"
	ValueKey         = "value"
)
