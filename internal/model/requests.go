package model

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return validatorInstance().Struct(r)
}

// RegisterRequest carries the role-specific sign-up fields. Department and
// Year apply to students, OrganizationName to organizers.
type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	Name             string `json:"name" validate:"required"`
	College          string `json:"college" validate:"required"`
	Role             Role   `json:"role" validate:"required,oneof=student organizer admin"`
	Department       string `json:"department,omitempty"`
	Year             *int   `json:"year,omitempty" validate:"omitempty,min=1,max=6"`
	OrganizationName string `json:"organization_name,omitempty" validate:"required_if=Role organizer"`
}

func (r RegisterRequest) Validate() error {
	return validatorInstance().Struct(r)
}

type EventInput struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	Date            Time    `json:"date"`
	Venue           string  `json:"venue" validate:"required"`
	Fee             float64 `json:"fee" validate:"gte=0"`
	College         string  `json:"college" validate:"required"`
	Category        string  `json:"category,omitempty"`
	MaxParticipants *int    `json:"max_participants,omitempty" validate:"omitempty,gt=0"`
}

func (e EventInput) Validate() error {
	return validatorInstance().Struct(e)
}

type RatingInput struct {
	EventID  string `json:"event_id" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Feedback string `json:"feedback,omitempty"`
}

func (r RatingInput) Validate() error {
	return validatorInstance().Struct(r)
}
