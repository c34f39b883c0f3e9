package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: a stable code plus a safe message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and driver errors into user facing codes.
// Sensitive details stay out of the message; the context string hints which
// entity the caller was working on.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Postgres constraint violations surface as driver error strings; the
	// gorm postgres driver does not expose typed errors for these.

	// Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return parseNotNullError(errStr)
	}

	// Network/connection errors
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unreachable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong, please try again later",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Email is already registered",
		}
	}

	if strings.Contains(errLower, "products") || strings.Contains(errLower, "idx_products_name") {
		return ErrorInfo{
			Code:    ProductNameExists,
			Message: "A product with this name already exists",
		}
	}

	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Record already exists, please try again",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Record already exists",
	}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Record is referenced by other data and cannot be deleted",
		}
	}

	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "User does not exist",
		}
	}
	if strings.Contains(errLower, "product_id") || strings.Contains(errLower, "fk_products") {
		return ErrorInfo{
			Code:    ProductNotFound,
			Message: "Product does not exist",
		}
	}
	if strings.Contains(errLower, "cart_id") || strings.Contains(errLower, "fk_carts") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Cart does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Referenced record not found",
	}
}

func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "Email is required"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "Password is required"}
	}
	if strings.Contains(errLower, "name") {
		return ErrorInfo{Code: ValidationRequired, Message: "Name is required"}
	}
	if strings.Contains(errLower, "price") {
		return ErrorInfo{Code: ValidationRequired, Message: "Price is required"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "A required field is missing",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "product") {
		return "Product not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}
	if strings.Contains(contextLower, "cart") {
		return "Cart not found"
	}
	if strings.Contains(contextLower, "transaction") {
		return "Transaction not found"
	}

	return "Requested record not found"
}
