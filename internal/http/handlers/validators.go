package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// RegisterValidators adds the batch form rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	if err := v.RegisterValidation("multipleof10", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%models.WidthStep == 0
	}); err != nil {
		return err
	}

	return v.RegisterValidation("aspectratio", func(fl validator.FieldLevel) bool {
		ratio, err := models.ParseAspectRatio(fl.Field().String())
		return err == nil && ratio.Supported()
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "aspectratio":
		return fmt.Sprintf("ratio %v is not supported", fe.Value())
	case "multipleof10":
		return fmt.Sprintf("width must be a multiple of %d", models.WidthStep)
	case "min", "max":
		return fmt.Sprintf("%s must be between its bounds (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
