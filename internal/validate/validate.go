package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	return v
}

type ErrorResponse struct {
	FailedField string `json:"failed_field"`
	Tag         string `json:"tag"`
	Value       string `json:"value"`
}

func (er *ErrorResponse) Error() string {
	if er.Value != "" {
		return fmt.Sprintf("failed to validate field %v: %v=%v", er.FailedField, er.Tag, er.Value)
	}

	return fmt.Sprintf("failed to validate field %v: %v", er.FailedField, er.Tag)
}

// Struct validates s and returns one error per failed field. FailedField is
// the dotted JSON path of the field without the root struct name.
func Struct(s any) []*ErrorResponse {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
	}

	responses := make([]*ErrorResponse, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}

		responses = append(responses, &ErrorResponse{
			FailedField: field,
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}

	return responses
}
