package validation

import (
	"errors"
	"testing"

	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name     string `json:"name" validate:"required,max=10"`
	Email    string `json:"email" validate:"required,email"`
	Kind     string `json:"kind" validate:"oneof=rent buy"`
	Months   int    `json:"months" validate:"gte=1"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Internal string `json:"-" validate:"required"`
}

func TestStruct(t *testing.T) {
	err := Struct(contactForm{
		Name:   "A very long name",
		Email:  "not-an-email",
		Kind:   "lease",
		Months: 0,
		Date:   "01/02/2025",
	})
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	fields := FieldErrors(err)
	require.Equal(t, "must be at most 10 characters", fields.First("name"))
	require.Equal(t, "must be a valid email address", fields.First("email"))
	require.Equal(t, "must be one of: rent, buy", fields.First("kind"))
	require.Equal(t, "must be 1 or more", fields.First("months"))
	require.Equal(t, "must be a date (YYYY-MM-DD)", fields.First("date"))
	require.Equal(t, "is required", fields.First("Internal"))
	require.Equal(t, "", fields.First("missing"))
	require.Len(t, fields.Lines(), 6)
}

func TestStructValid(t *testing.T) {
	require.NoError(t, Struct(contactForm{
		Name:     "Asha",
		Email:    "asha@example.com",
		Kind:     "rent",
		Months:   6,
		Date:     "2025-04-01",
		Internal: "x",
	}))
}

func TestFieldErrorsOnOtherErrors(t *testing.T) {
	require.Nil(t, FieldErrors(errors.New("boom")))
	require.Nil(t, FieldErrors(nil))
}

func TestErrorsAdd(t *testing.T) {
	errs := Errors{}
	errs.Add("password", "is required")
	errs.Add("password", "is too short")
	require.Equal(t, []string{"password: is required", "password: is too short"}, errs.Lines())
	require.Contains(t, errs.Error(), "invalid input")
}
