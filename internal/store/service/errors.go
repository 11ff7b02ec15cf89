package service

import (
	"errors"
	"fmt"
)

// 业务校验错误原因
var (
	ErrInvalidDate          = errors.New("delivery date must be later than the request date")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrExtraNotAllowed      = errors.New("extra shipment is only allowed for extra requests")
	ErrOverAllocation       = errors.New("quantity exceeds the remaining quantity of the request item")
	ErrLineAlreadyFulfilled = errors.New("request item is already fulfilled")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPrice         = errors.New("price must be greater than 0")
	ErrInvalidDateFormat    = errors.New("date must be formatted as YYYY-MM-DD")
	ErrDeliveryHasSales     = errors.New("delivery has sold units")
	ErrDeliveryHasUnits     = errors.New("delivery already has product units")
	ErrUnitAlreadySold      = errors.New("product unit is already sold")
	ErrInvalidEventType     = errors.New("invalid event type")
	ErrUnknownProduct       = errors.New("product does not exist")
	ErrDuplicateCode        = errors.New("product code already exists")
)

// 单品生成错误
var (
	ErrMissingProduct            = errors.New("delivery has no product")
	ErrSerialGenerationExhausted = errors.New("could not generate a unique serial number")
)

// ValidationError 校验失败，阻止任何写入
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func invalidf(field string, err error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Err: err, Message: fmt.Sprintf(format, args...)}
}

// IsValidation 是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
