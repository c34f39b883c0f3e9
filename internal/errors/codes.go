package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// The storefront frontend maps these codes to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Products (PRODUCT_) ====================
	ProductNotFound   = "PRODUCT_NOT_FOUND"
	ProductNameExists = "PRODUCT_NAME_EXISTS"
	ProductOutOfStock = "PRODUCT_OUT_OF_STOCK"

	// ==================== Cart (CART_) ====================
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartEmpty           = "CART_EMPTY"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutInsufficientStock = "CHECKOUT_INSUFFICIENT_STOCK"
	TransactionNotFound       = "TRANSACTION_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
