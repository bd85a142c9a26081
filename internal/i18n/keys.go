// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternalError     = "error.internal"
	KeyAccessDenied      = "error.access_denied"
	KeyRateLimited       = "error.rate_limited"
	KeyValidationInvalid = "validation.invalid"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthPhoneExists        = "auth.phone_exists"
	KeyAuthAccountBlocked     = "auth.account_blocked"
	KeyAuthPasswordNotSet     = "auth.password_not_set"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthIdentifierRequired = "auth.identifier_required"
	KeyAuthResetCodeSent      = "auth.reset_code_sent"
	KeyAuthResetCodeRequired  = "auth.reset_code_required"
	KeyAuthResetCodeInvalid   = "auth.reset_code_invalid"
	KeyAuthResetSuccess       = "auth.password_reset_success"
	KeyAuthResetDeliveryError = "auth.reset_delivery_failed"
	KeyAuthWrongPassword      = "auth.wrong_password"
	KeyAuthPasswordChanged    = "auth.password_changed"

	// Users
	KeyUserNotFound    = "user.not_found"
	KeyUserBlocked     = "user.blocked"
	KeyUserUnblocked   = "user.unblocked"
	KeyUserCannotBlock = "user.cannot_block_self"
	KeyUserUpdated     = "user.updated"

	// Company
	KeyCompanyNotFound      = "company.not_found"
	KeyCompanySaved         = "company.saved"
	KeyCompanyApproved      = "company.approved"
	KeyCompanyBlocked       = "company.blocked"
	KeyCompanyUnblocked     = "company.unblocked"
	KeyCompanyInvalidAction = "company.invalid_action"

	// Employees
	KeyEmployeeNotFound      = "employee.not_found"
	KeyEmployeeAdded         = "employee.added"
	KeyEmployeeRemoved       = "employee.removed"
	KeyEmployeeAlreadyMember = "employee.already_member"
	KeyEmployeeOtherCompany  = "employee.other_company"
	KeyEmployeeRemoveSelf    = "employee.remove_self"
	KeyEmployeeRemoveOwner   = "employee.remove_owner"
	KeyEmployeeManageDenied  = "employee.manage_denied"
	KeyEmployeeGrantDenied   = "employee.grant_admin_denied"

	// Categories
	KeyCategoryNotFound    = "category.not_found"
	KeyCategoryCreated     = "category.created"
	KeyCategoryUpdated     = "category.updated"
	KeyCategoryDeleted     = "category.deleted"
	KeyCategorySlugTaken   = "category.slug_taken"
	KeyCategorySlugEmpty   = "category.slug_empty"
	KeyCategoryAccessError = "category.access_denied"

	// Uploads
	KeyUploadFileRequired = "upload.file_required"
	KeyUploadTooLarge     = "upload.too_large"
	KeyUploadInvalidType  = "upload.invalid_type"
	KeyUploadFailed       = "upload.failed"

	// Documents
	KeyDocumentNotFound     = "document.not_found"
	KeyDocumentUploaded     = "document.uploaded"
	KeyDocumentDeleted      = "document.deleted"
	KeyDocumentNameRequired = "document.name_required"

	// Gallery
	KeyImageNotFound     = "image.not_found"
	KeyImagesUploaded    = "image.uploaded"
	KeyImageDeleted      = "image.deleted"
	KeyImageLogoDelete   = "image.logo_delete"
	KeyImageNoneAccepted = "image.none_accepted"

	// Reviews
	KeyReviewNotFound     = "review.not_found"
	KeyReviewCreated      = "review.created"
	KeyReviewResponded    = "review.responded"
	KeyReviewDuplicate    = "review.duplicate"
	KeyReviewOwnCompany   = "review.own_company"
	KeyReviewAccessDenied = "review.access_denied"

	// Notifications
	KeyNotificationNotFound      = "notification.not_found"
	KeyNotificationCreated       = "notification.created"
	KeyNotificationMarkedRead    = "notification.marked_read"
	KeyNotificationDeleted       = "notification.deleted"
	KeyNotificationTargetMissing = "notification.target_missing"

	// Notification bodies, translated when listed
	KeyNotifyReviewTitle         = "notify.review.title"
	KeyNotifyReviewText          = "notify.review.text"
	KeyNotifyReviewResponseTitle = "notify.review_response.title"
	KeyNotifyReviewResponseText  = "notify.review_response.text"
	KeyNotifyMessageTitle        = "notify.message.title"
	KeyNotifyMessageText         = "notify.message.text"
	KeyNotifyEmployeeTitle       = "notify.employee.title"
	KeyNotifyEmployeeText        = "notify.employee.text"
	KeyNotifyExportRequestTitle  = "notify.export_request.title"
	KeyNotifyExportRequestText   = "notify.export_request.text"
	KeyNotifyCompanyStatusTitle  = "notify.company_status.title"
	KeyNotifyCompanyStatusText   = "notify.company_status.text"

	// Chat
	KeyChatNotFound       = "chat.not_found"
	KeyChatAccessDenied   = "chat.access_denied"
	KeyChatOwnCompany     = "chat.own_company"
	KeyChatMessageInvalid = "chat.message_invalid"

	// Analytics
	KeyAnalyticsInvalidRange = "analytics.invalid_range"

	// Export requests
	KeyExportRequestNotFound      = "export_request.not_found"
	KeyExportRequestCreated       = "export_request.created"
	KeyExportRequestUpdated       = "export_request.updated"
	KeyExportRequestBudget        = "export_request.invalid_budget"
	KeyExportRequestTerms         = "export_request.terms_required"
	KeyExportRequestInvalidStatus = "export_request.invalid_status"
)
