package service

import (
	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/domain/model"
	apperrors "github.com/target/shortener/internal/errors"
)

// Authorize allows admins and the owner of entry; everyone else is Forbidden.
func Authorize(principal *domainauth.Principal, entry *model.Entry) error {
	if principal == nil || entry == nil {
		return apperrors.Forbidden("access to this resource is denied")
	}
	if principal.IsAdmin {
		return nil
	}
	if principal.SubjectID != "" && entry.OwnerID == principal.SubjectID {
		return nil
	}
	return apperrors.Forbidden("access to this resource is denied")
}
