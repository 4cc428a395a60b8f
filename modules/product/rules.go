package product

import "github.com/example/product-catalog/pkg/validation"

// CreationRules validate the body of a create request.
var CreationRules = validation.Rules{
	{Field: "name", Kind: validation.String, Required: true, Constraint: "max=255"},
	{Field: "description", Kind: validation.String, Nullable: true, Constraint: "max=1000"},
	{Field: "price", Kind: validation.Integer, Required: true, Constraint: "min=0"},
	{Field: "stock", Kind: validation.Integer, Required: true, Constraint: "min=0"},
	{Field: "is_active", Kind: validation.Boolean},
}

// UpdateRules validate the body of an update request: same constraints,
// applied only to the fields that are present.
var UpdateRules = validation.DeriveUpdateRules(CreationRules)
