package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Struct-level validation complements the JSON schema checks at the HTTP
// boundary; it is what internal callers use when no schema pass has run.

func (r *GameUpsertRequest) Validate() error {
	return validate.Struct(r)
}

func (r *ReviewRequest) Validate() error {
	return validate.Struct(r)
}

func (r *AuthRequest) Validate() error {
	return validate.Struct(r)
}

func (r *RecommendationRequest) Validate() error {
	return validate.Struct(r)
}
