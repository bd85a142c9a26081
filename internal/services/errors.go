// internal/services/errors.go
package services

import (
	"errors"

	"github.com/exportplatform/export-api/internal/i18n"
)

// Error kinds. Handlers map them onto HTTP status codes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain failure of one of the kinds above, carrying the
// translation key of its user-facing message.
type Error struct {
	Kind error
	Key  string
}

func (e *Error) Error() string {
	return e.Key
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, key string) *Error {
	return &Error{Kind: kind, Key: key}
}

var (
	ErrInvalidCredentials = newError(ErrUnauthorized, i18n.KeyAuthInvalidCredentials)
	ErrPasswordNotSet     = newError(ErrUnauthorized, i18n.KeyAuthPasswordNotSet)
	ErrInvalidToken       = newError(ErrUnauthorized, i18n.KeyAuthInvalidToken)
	ErrAccountBlocked     = newError(ErrForbidden, i18n.KeyAuthAccountBlocked)
	ErrEmailTaken         = newError(ErrConflict, i18n.KeyAuthUserExists)
	ErrPhoneTaken         = newError(ErrConflict, i18n.KeyAuthPhoneExists)
	ErrIdentifierRequired = newError(ErrInvalidInput, i18n.KeyAuthIdentifierRequired)
	ErrResetCodeRequired  = newError(ErrInvalidInput, i18n.KeyAuthResetCodeRequired)
	ErrResetCodeInvalid   = newError(ErrInvalidInput, i18n.KeyAuthResetCodeInvalid)
	ErrResetCodeNotFound  = newError(ErrNotFound, i18n.KeyAuthResetCodeInvalid)
	ErrWrongPassword      = newError(ErrInvalidInput, i18n.KeyAuthWrongPassword)

	ErrUserNotFound     = newError(ErrNotFound, i18n.KeyUserNotFound)
	ErrCannotBlockSelf  = newError(ErrInvalidInput, i18n.KeyUserCannotBlock)
	ErrCompanyNotFound  = newError(ErrNotFound, i18n.KeyCompanyNotFound)
	ErrInvalidAction    = newError(ErrInvalidInput, i18n.KeyCompanyInvalidAction)
	ErrAccessDenied     = newError(ErrForbidden, i18n.KeyAccessDenied)
	ErrAnalyticsRange   = newError(ErrInvalidInput, i18n.KeyAnalyticsInvalidRange)
	ErrFileRequired     = newError(ErrInvalidInput, i18n.KeyUploadFileRequired)
	ErrFileTooLarge     = newError(ErrInvalidInput, i18n.KeyUploadTooLarge)
	ErrFileTypeRejected = newError(ErrInvalidInput, i18n.KeyUploadInvalidType)

	ErrEmployeeNotFound      = newError(ErrNotFound, i18n.KeyEmployeeNotFound)
	ErrEmployeeAlreadyMember = newError(ErrConflict, i18n.KeyEmployeeAlreadyMember)
	ErrEmployeeOtherCompany  = newError(ErrConflict, i18n.KeyEmployeeOtherCompany)
	ErrEmployeeNotInCompany  = newError(ErrForbidden, i18n.KeyAccessDenied)
	ErrEmployeeRemoveSelf    = newError(ErrInvalidInput, i18n.KeyEmployeeRemoveSelf)
	ErrEmployeeRemoveOwner   = newError(ErrInvalidInput, i18n.KeyEmployeeRemoveOwner)
	ErrEmployeeManageDenied  = newError(ErrForbidden, i18n.KeyEmployeeManageDenied)
	ErrEmployeeGrantDenied   = newError(ErrForbidden, i18n.KeyEmployeeGrantDenied)

	ErrCategoryNotFound = newError(ErrNotFound, i18n.KeyCategoryNotFound)
	ErrCategoryDenied   = newError(ErrForbidden, i18n.KeyCategoryAccessError)
	ErrSlugTaken        = newError(ErrConflict, i18n.KeyCategorySlugTaken)
	ErrSlugEmpty        = newError(ErrInvalidInput, i18n.KeyCategorySlugEmpty)

	ErrDocumentNotFound     = newError(ErrNotFound, i18n.KeyDocumentNotFound)
	ErrDocumentNameRequired = newError(ErrInvalidInput, i18n.KeyDocumentNameRequired)

	ErrImageNotFound     = newError(ErrNotFound, i18n.KeyImageNotFound)
	ErrLogoDelete        = newError(ErrInvalidInput, i18n.KeyImageLogoDelete)
	ErrNoImagesAccepted  = newError(ErrInvalidInput, i18n.KeyImageNoneAccepted)
	ErrReviewNotFound    = newError(ErrNotFound, i18n.KeyReviewNotFound)
	ErrReviewDenied      = newError(ErrForbidden, i18n.KeyReviewAccessDenied)
	ErrReviewDuplicate   = newError(ErrConflict, i18n.KeyReviewDuplicate)
	ErrReviewOwnCompany  = newError(ErrForbidden, i18n.KeyReviewOwnCompany)
	ErrNotificationFound = newError(ErrNotFound, i18n.KeyNotificationNotFound)
	ErrNotificationScope = newError(ErrInvalidInput, i18n.KeyNotificationTargetMissing)

	ErrChatNotFound   = newError(ErrNotFound, i18n.KeyChatNotFound)
	ErrChatDenied     = newError(ErrForbidden, i18n.KeyChatAccessDenied)
	ErrChatOwnCompany = newError(ErrInvalidInput, i18n.KeyChatOwnCompany)
	ErrMessageInvalid = newError(ErrInvalidInput, i18n.KeyChatMessageInvalid)

	ErrExportRequestNotFound = newError(ErrNotFound, i18n.KeyExportRequestNotFound)
	ErrExportRequestBudget   = newError(ErrInvalidInput, i18n.KeyExportRequestBudget)
	ErrExportRequestTerms    = newError(ErrInvalidInput, i18n.KeyExportRequestTerms)
	ErrExportRequestStatus   = newError(ErrInvalidInput, i18n.KeyExportRequestInvalidStatus)
)
