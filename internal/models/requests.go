package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

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
	return v
}

// validateStruct runs the struct tags and maps each failure to the message
// registered for the field, falling back to "<param> is required".
func validateStruct(req any, messages map[string]string) []FieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Msg: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is required"
		}
		out = append(out, FieldError{Param: fe.Field(), Msg: msg})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// UpsertProfileRequest is the body of POST /api/profile. Empty strings are
// treated as "not supplied".
type UpsertProfileRequest struct {
	Website   string `json:"website" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Skills    string `json:"skills" validate:"required"`
	YouTube   string `json:"youtube"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
}

func (r *UpsertProfileRequest) Validate() []FieldError {
	return validateStruct(r, map[string]string{
		"website": "Website is required",
		"status":  "Status is required",
		"skills":  "Skills is required",
	})
}

// ToUpdate converts the request into a partial update.
func (r *UpsertProfileRequest) ToUpdate() ProfileUpdate {
	upd := ProfileUpdate{
		Website: optional(r.Website),
		Status:  optional(r.Status),
		Skills:  optional(r.Skills),
		Social:  map[string]string{},
	}
	for platform, url := range map[string]string{
		PlatformYouTube:   r.YouTube,
		PlatformInstagram: r.Instagram,
		PlatformFacebook:  r.Facebook,
		PlatformTwitter:   r.Twitter,
		PlatformLinkedIn:  r.LinkedIn,
	} {
		if url != "" {
			upd.Social[platform] = url
		}
	}
	return upd
}

// AddExperienceRequest is the body of PUT /api/profile/experience. The
// description travels under the "experience" key.
type AddExperienceRequest struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Description string `json:"experience" validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
}

func (r *AddExperienceRequest) Validate() []FieldError {
	return validateStruct(r, map[string]string{
		"title":      "Title is required",
		"company":    "Company is required",
		"experience": "Experience is required",
	})
}

func (r *AddExperienceRequest) ToExperience() Experience {
	return Experience{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		Description: r.Description,
		From:        r.From,
		To:          r.To,
		Current:     r.Current,
	}
}

// AddEducationRequest is the body of PUT /api/profile/education.
type AddEducationRequest struct {
	School       string `json:"school" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func (r *AddEducationRequest) Validate() []FieldError {
	return validateStruct(r, map[string]string{
		"school":       "School is required",
		"degree":       "Degree is required",
		"fieldofstudy": "Field of study is required",
	})
}

func (r *AddEducationRequest) ToEducation() Education {
	return Education{
		School:       r.School,
		Degree:       r.Degree,
		FieldOfStudy: r.FieldOfStudy,
		From:         r.From,
		To:           r.To,
		Current:      r.Current,
		Description:  r.Description,
	}
}
