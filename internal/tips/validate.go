package tips

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var buyRangePattern = regexp.MustCompile(`^\d+(\.\d+)?-\d+(\.\d+)?$`)

// ValidationErrors - ошибки формы по полям, выводятся рядом с полями в UI
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Is позволяет проверять отсутствие тикера через errors.Is(err, ErrStockRequired)
func (v ValidationErrors) Is(target error) bool {
	_, ok := v["stockId"]
	return ok && target == ErrStockRequired
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// В ошибках используем JSON-имена полей, как их видит UI
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("buyrange", func(fl validator.FieldLevel) bool {
		return buyRangePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("tipaction", func(fl validator.FieldLevel) bool {
		return isTipAction(fl.Field().String())
	})
	v.RegisterValidation("horizon", func(fl validator.FieldLevel) bool {
		return isHorizon(fl.Field().String())
	})

	v.RegisterStructValidation(conditionalRules, TipForm{})

	return v
}

// conditionalRules - тикер и поля, обязательные только при определённых action/status
func conditionalRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(TipForm)

	if strings.TrimSpace(f.StockID) == "" {
		sl.ReportError(f.StockID, "stockId", "StockID", "required", "")
	}

	if needsTarget(f.Action) && strings.TrimSpace(f.TargetPrice) == "" {
		sl.ReportError(f.TargetPrice, "targetPrice", "TargetPrice", "required", "")
	}

	if f.Action == "add more" && strings.TrimSpace(f.AddMoreAt) == "" {
		sl.ReportError(f.AddMoreAt, "addMoreAt", "AddMoreAt", "required", "")
	}

	if needsExit(f.Status, f.Action) {
		if strings.TrimSpace(f.ExitPrice) == "" {
			sl.ReportError(f.ExitPrice, "exitPrice", "ExitPrice", "required", "")
		}
		if strings.TrimSpace(f.ExitStatus) == "" {
			sl.ReportError(f.ExitStatus, "exitStatus", "ExitStatus", "required", "")
		}
	}
}

// Validate проверяет форму и возвращает ValidationErrors при ошибках
func Validate(f TipForm) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}

	return out
}

var labels = map[string]string{
	"title":             "Title",
	"category":          "Category",
	"content":           "Content",
	"description":       "Description",
	"status":            "Status",
	"action":            "Action",
	"buyRange":          "Buy range",
	"targetPrice":       "Target price",
	"addMoreAt":         "Add more price",
	"exitPrice":         "Exit price",
	"exitStatus":        "Exit status",
	"horizon":           "Horizon",
	"tipUrl":            "Tip URL",
	"analystConfidence": "Confidence",
}

func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		if fe.Field() == "stockId" {
			return "Please select a stock"
		}
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be between 1 and 10", label)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be between 1 and 10", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "tipaction":
		return label + " is not a valid trade action"
	case "horizon":
		return label + " must be one of: " + strings.Join(horizons, ", ")
	case "buyrange":
		return label + " must be in the format min-max (e.g. 100-200)"
	case "numeric":
		return label + " must be a number"
	case "url":
		return label + " must be a valid URL"
	default:
		return label + " is invalid"
	}
}

// UserMessage переводит ошибку сохранения в текст для уведомления
func UserMessage(err error) string {
	var verrs ValidationErrors

	switch {
	case errors.Is(err, ErrStockRequired):
		return "Please select a stock"
	case errors.As(err, &verrs):
		return "Please fix the highlighted fields"
	default:
		return err.Error()
	}
}
