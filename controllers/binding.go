package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cppla/intranet/services"
	"github.com/cppla/intranet/utils"
)

func init() {
	// report fields by their wire names rather than Go struct names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	}
}

// pageQuery is shared by every listing endpoint.
type pageQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=1000"`
}

func (q pageQuery) page() services.Page {
	return services.Page{Skip: q.Skip, Limit: q.Limit}
}

// bindError converts gin binding failures into the service validation shape.
func bindError(err error, source string) *services.ValidationError {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		fields := make([]services.FieldError, 0, len(ves))
		for _, fe := range ves {
			fields = append(fields, services.FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return &services.ValidationError{Fields: fields}
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return services.Invalid(source, "must be a valid integer")
	}
	return services.Invalid(source, err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// paramID parses a positive integer path parameter, writing a 422 when it is malformed.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 0)
	if err != nil || id == 0 {
		utils.ValidationFailed(ctx, services.Invalid(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func bindPage(ctx *gin.Context, q interface{}) bool {
	if err := ctx.ShouldBindQuery(q); err != nil {
		utils.ValidationFailed(ctx, bindError(err, "query"))
		return false
	}
	return true
}
