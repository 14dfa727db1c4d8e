package flights

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the flightnum tag on gin's binding engine.
// Call once during startup before routes are served.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("flightnum", func(fl validator.FieldLevel) bool {
			return IsValidFlightNumber(fl.Field().String())
		})
	}
}
