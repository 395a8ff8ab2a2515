package middleware

import (
	"reflect"
	"strings"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures the gin binding validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("stagename", validStageName)
}

// validStageName accepts only the six canonical workflow stage names
func validStageName(fl validator.FieldLevel) bool {
	_, err := requisition.ParseStage(fl.Field().String())
	return err == nil
}
