package helper

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct runs validator.v10 tags on any request DTO.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
