package handler

import (
	"errors"
	"net/http"
	"reflect"

	"puntoventa/internal/apierror"
	"puntoventa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service error kinds to HTTP status codes:
// validación → 400, conflicto de estado → 409, credenciales → 401,
// persistencia → 500 (with a generic message — internals stay internal).
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidacion):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrConflictoEstado):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCredenciales):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPersistencia):
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
