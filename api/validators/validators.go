// Package validators decodes request bodies and query strings and checks them
// against the recruitment field rules: 10 digit mobiles, calendar dates in
// either stored or keyed-in form, employee codes and profile statuses.
package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
)

// maxBodyBytes bounds every JSON body; the largest legitimate one is a
// feedback entry with a 1000 character note.
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	for tag, fn := range map[string]validator.Func{
		"mobile":        isMobile,
		"caldate":       isCalendarDate,
		"empcode":       isEmployeeCode,
		"profilestatus": isProfileStatus,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validator: %v", tag, err))
		}
	}
	return v
}

// NormalizeMobile drops the spaces and dashes people type inside a number.
func NormalizeMobile(value string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(value))
}

// isMobile accepts exactly ten digits once separators are removed.
func isMobile(fl validator.FieldLevel) bool {
	number := NormalizeMobile(fl.Field().String())
	if len(number) != 10 {
		return false
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
	}
	return true
}

// isCalendarDate accepts YYYY-MM-DD and DD-MM-YYYY, the two forms recruiters
// key follow-up, interview and joining dates in.
func isCalendarDate(fl validator.FieldLevel) bool {
	_, ok := followup.ParseCalendarDate(fl.Field().String(), time.UTC)
	return ok
}

// isEmployeeCode accepts 2 to 16 letters and digits, such as E1 or HR204.
func isEmployeeCode(fl validator.FieldLevel) bool {
	code := strings.TrimSpace(fl.Field().String())
	if len(code) < 2 || len(code) > 16 {
		return false
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func isProfileStatus(fl validator.FieldLevel) bool {
	_, err := enums.ParseProfileStatus(fl.Field().String())
	return err == nil
}

// DecodeJSONBody decodes a single JSON object into dest, rejecting unknown
// fields and oversized bodies, then runs the struct's validate tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "mobile":
		return "must be a 10 digit mobile number"
	case "caldate":
		return "expected YYYY-MM-DD or DD-MM-YYYY"
	case "empcode":
		return "must be an employee code of 2 to 16 letters or digits"
	case "profilestatus":
		return "must be a known profile status"
	}
	return "is invalid"
}
