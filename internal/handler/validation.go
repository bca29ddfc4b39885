package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"storybook-server/internal/models"
)

var validatorsOnce sync.Once

// registerValidators подключает к валидатору gin имена полей из json-тегов
// и правило agegroup.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("agegroup", func(fl validator.FieldLevel) bool {
			return models.AgeGroup(fl.Field().String()).Valid()
		})
	})
}

// validationErrorResponse ответ 400 с описанием каждого поля.
type validationErrorResponse struct {
	models.ErrorResponse
	Fields map[string]string `json:"fields,omitempty"`
}

// bindJSON разбирает тело и отвечает 400, если оно невалидно.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON как bindJSON, но пустое тело не ошибка.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fieldMessage(fe)
		}
		c.JSON(http.StatusBadRequest, validationErrorResponse{
			ErrorResponse: models.ErrorResponse{Code: "validation_error", Message: "Alguns campos estão inválidos."},
			Fields:        fields,
		})
		return
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "invalid_body", Message: "Corpo da requisição inválido."})
}

// fieldPath путь поля без имени структуры запроса.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("mínimo de %s", fe.Param())
		}
		return fmt.Sprintf("deve ser pelo menos %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("máximo de %s", fe.Param())
		}
		return fmt.Sprintf("deve ser no máximo %s", fe.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "agegroup":
		return "faixa etária desconhecida"
	}
	return "valor inválido"
}
