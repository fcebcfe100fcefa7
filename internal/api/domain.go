package api

import (
	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/internal/emails"
)

// Domain holds the stateful domain systems behind the API. Calendar and
// dashboard views are computed per request from Consultations.
type Domain struct {
	Consultations consultations.System
	Emails        emails.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	consultationsSystem := consultations.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	emailsSystem := emails.New(
		runtime.Email,
		consultationsSystem,
		runtime.Mailer,
		runtime.Storage,
		runtime.Logger,
	)

	return &Domain{
		Consultations: consultationsSystem,
		Emails:        emailsSystem,
	}
}
