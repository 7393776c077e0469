package engine

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/piwi3910/marcenapp/internal/model"
)

var validate = newValidator()

// newValidator reports fields by their json names, e.g. "quantity".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// NaN and infinities pass gt/gte comparisons, so they are rejected first.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if !f.CanFloat() {
			return true
		}
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	})
	return v
}

// validateInput checks parts, stock, kerf, margin and material prices and
// returns a *ValidationError listing every problem, or nil.
func validateInput(parts []model.Part, stock model.StockSheet, kerf, margin float64, prices map[string]float64) error {
	verr := &ValidationError{}

	for i, p := range parts {
		prefix := fmt.Sprintf("parts[%d]", i)
		collectStructErrors(verr, prefix, validate.Struct(p))
		if p.Material != "" && strings.TrimSpace(p.Material) == "" {
			verr.add(prefix+".material", "must not be blank")
		}
	}

	collectStructErrors(verr, "stock", validate.Struct(stock))
	collectStructErrors(verr, "kerf", validate.Var(kerf, "finite,gte=0"))
	marginErr := validate.Var(margin, "finite,gte=0")
	collectStructErrors(verr, "margin", marginErr)

	if marginErr == nil && stock.Width > 0 && 2*margin >= stock.Width {
		verr.add("margin", "%g on both sides leaves no usable width on a %g sheet", margin, stock.Width)
	}
	if marginErr == nil && stock.Height > 0 && 2*margin >= stock.Height {
		verr.add("margin", "%g on both sides leaves no usable height on a %g sheet", margin, stock.Height)
	}

	materials := make([]string, 0, len(prices))
	for m := range prices {
		materials = append(materials, m)
	}
	sort.Strings(materials)
	for _, m := range materials {
		collectStructErrors(verr, fmt.Sprintf("material_prices[%s]", m), validate.Var(prices[m], "finite,gte=0"))
	}

	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

// ValidatePart checks a single part before it enters a part list. Fields are
// named without a prefix, e.g. "width".
func ValidatePart(p model.Part) error {
	verr := &ValidationError{}
	collectStructErrors(verr, "", validate.Struct(p))
	if p.Material != "" && strings.TrimSpace(p.Material) == "" {
		verr.add("material", "must not be blank")
	}
	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

// collectStructErrors turns validator field errors into FieldErrors named
// after the json tag, e.g. "parts[2].quantity".
func collectStructErrors(verr *ValidationError, prefix string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add(prefix, "%v", err)
		return
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		switch {
		case field == "":
			field = prefix
		case prefix != "":
			field = prefix + "." + field
		}
		verr.add(field, "%s", describeTag(fe))
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "finite":
		return fmt.Sprintf("must be a finite number, got %v", fe.Value())
	case "gt":
		return fmt.Sprintf("must be > %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
