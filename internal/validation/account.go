package validation

import "strings"

// Registration is the body of POST /api/register.
type Registration struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Timezone  string `json:"timezone" validate:"omitempty,timezone"`
}

func DecodeRegistration(raw []byte) (*Registration, error) {
	verr := &Error{Entity: "registration"}
	var in Registration
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Timezone = strings.TrimSpace(in.Timezone)
	check(&in, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func DecodeCredentials(raw []byte) (*Credentials, error) {
	verr := &Error{Entity: "credentials"}
	var in Credentials
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	check(&in, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}

// ProfileUpdate is a partial profile edit; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Timezone  *string `json:"timezone" validate:"omitempty,timezone"`
}

func DecodeProfileUpdate(raw []byte) (*ProfileUpdate, error) {
	verr := &Error{Entity: "profile"}
	var in ProfileUpdate
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	for _, f := range []*string{in.FirstName, in.LastName, in.Timezone} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	check(&in, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}
