// Package validation checks user-entered clip data before it reaches storage.
//
// Rules are expressed as go-playground/validator struct tags. Failures are
// reported as *Error, a field-keyed set of messages that matches
// common.ErrValidation.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Error carries one message per offending field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == common.ErrValidation
}

type recordRules struct {
	ID            string  `validate:"required"`
	Name          string  `validate:"nonblank,max=50"`
	Description   string  `validate:"max=200"`
	VideoLocation string  `validate:"required"`
	Duration      float64 `validate:"gt=0"`
}

type cropRules struct {
	StartTime float64 `validate:"gte=0"`
	EndTime   float64 `validate:"gte=0,gtfield=StartTime"`
	Duration  float64 `validate:"gt=0"`
}

type patchRules struct {
	Name        *string `validate:"omitnil,nonblank,max=50"`
	Description *string `validate:"omitnil,max=200"`
}

// Metadata trims m and checks the name and description lengths.
func Metadata(m models.Metadata) (models.Metadata, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)

	if err := check(m); err != nil {
		return models.Metadata{}, err
	}
	return m, nil
}

// Crop checks that the window is non-negative, ordered and at most one clip long.
func Crop(c models.CropWindow) error {
	return check(c)
}

// Record checks a record about to be stored, including its crop window when
// one is set.
func Record(r models.VideoRecord) error {
	err := check(recordRules{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		VideoLocation: r.VideoLocation,
		Duration:      r.Duration,
	})
	if r.CreatedAt.IsZero() {
		err = merge(err, "createdAt", "is required")
	}
	if c := r.CropInfo; c != nil {
		cerr := check(cropRules{StartTime: c.StartTime, EndTime: c.EndTime, Duration: c.Duration})
		if ve, ok := cerr.(*Error); ok {
			for k, msg := range ve.Fields {
				err = merge(err, "cropInfo."+k, msg)
			}
		} else if cerr != nil {
			return cerr
		}
	}
	return err
}

// Patch checks the fields a patch sets.
func Patch(p models.Patch) error {
	return check(patchRules{Name: p.Name, Description: p.Description})
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate: %w", err)
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldKey(fe.Field())] = message(fe)
	}
	return out
}

func merge(err error, field, msg string) error {
	if err == nil {
		return &Error{Fields: map[string]string{field: msg}}
	}
	if ve, ok := err.(*Error); ok {
		ve.Fields[field] = msg
	}
	return err
}

func fieldKey(name string) string {
	if name == "" {
		return name
	}
	if name == "ID" {
		return "id"
	}
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be greater than %s", fieldKey(fe.Param()))
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
