package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterBindingTagNames 校验错误使用 json/form 中的字段名，需在处理请求前调用
func RegisterBindingTagNames() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(FieldName)
		}
	})
}

// FieldName 依次取 json、form 标签名，都没有时退回 Go 字段名
func FieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// FormatValidationError 格式化绑定错误信息
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return strings.Join(messages, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be %s", typeErr.Field, typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "invalid JSON format"
	}

	return err.Error()
}

// formatFieldError 请求 DTO 只用到 max 约束，其余标签走通用提示
func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	if e.Tag() == "max" {
		if e.Kind() == reflect.String {
			return fmt.Sprintf("field '%s' must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("field '%s' must be at most %s", field, e.Param())
	}
	return fmt.Sprintf("field '%s' validation failed on '%s' tag", field, e.Tag())
}
