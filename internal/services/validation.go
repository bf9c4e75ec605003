package services

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

const maxReleaseYearAhead = 5

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return models.Genre(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("releaseyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year()+maxReleaseYearAhead)
	})
	_ = v.RegisterValidation("sortfield", func(fl validator.FieldLevel) bool {
		_, ok := models.SortField(fl.Field().String()).Column()
		return ok
	})
	// intrange checks a decimal string against "min" or "min max".
	_ = v.RegisterValidation("intrange", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		if err != nil {
			return false
		}
		bounds := strings.Fields(fl.Param())
		if len(bounds) > 0 {
			if lo, err := strconv.Atoi(bounds[0]); err == nil && n < lo {
				return false
			}
		}
		if len(bounds) > 1 {
			if hi, err := strconv.Atoi(bounds[1]); err == nil && n > hi {
				return false
			}
		}
		return true
	})
	// posterurl accepts "" so a patch can clear the poster.
	_ = v.RegisterValidation("posterurl", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		if raw == "" {
			return true
		}
		u, err := url.ParseRequestURI(raw)
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})

	return v
}

// fieldMessages holds the user-facing text for each rejected field.
var fieldMessages = map[string]string{
	"title":       "Title must be between 1 and 200 characters",
	"type":        "Type must be either movie or show",
	"genre":       "Please select a valid genre",
	"status":      "Status must be watched, unwatched, or watching",
	"rating":      "Rating must be between 1 and 10",
	"notes":       "Notes cannot exceed 1000 characters",
	"releaseYear": "Release year must be between 1900 and 5 years in the future",
	"poster":      "Poster must be a valid URL",
	"name":        "Name must be between 1 and 100 characters",
	"email":       "Please provide a valid email",
	"password":    "Password must be at least 6 characters",
	"sortBy":      "sortBy must be one of title, createdAt, updatedAt, rating, releaseYear",
	"sortOrder":   "sortOrder must be asc or desc",
	"page":        "Page must be a positive integer",
	"limit":       "Limit must be an integer between 1 and 100",
}

// FieldMessage returns the user-facing text for a rejected field.
func FieldMessage(field string) string {
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return "Invalid value"
}

// validateStruct runs the struct tags and converts failures into a
// ValidationError listing every offending field.
func validateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		field := apperror.FieldError{Field: fe.Field(), Message: msg}
		if fe.Field() != "password" {
			field.Value = fe.Value()
		}
		fields = append(fields, field)
	}
	return apperror.NewValidation(fields)
}
