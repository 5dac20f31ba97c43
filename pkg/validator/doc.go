// Package validator checks request input with small composable rules.
//
//	err := validator.Apply(
//		validator.Required("email", req.Email),
//		validator.ValidEmail("email", req.Email),
//	)
//
// Apply collects every failed rule into ValidationErrors, which callers
// render as a field-to-messages map.
package validator
