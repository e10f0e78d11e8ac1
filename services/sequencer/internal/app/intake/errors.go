package intake

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	goerrors "github.com/pkg/errors"
)

// fieldCodes maps intent fields failing binding rules onto reject codes.
var fieldCodes = map[string]errors.ErrorCode{
	"PriceTicks":  errors.RejectInvalidPrice,
	"Qty":         errors.RejectInvalidQuantity,
	"Side":        errors.RejectInvalidSide,
	"TimeInForce": errors.RejectInvalidTimeInForce,
	"Nonce":       errors.RejectStaleNonce,
}

// bindError maps a request binding failure. Rule violations become rejects
// with the field's code, anything else is a malformed request.
func bindError(err error) (int, ErrorResponse) {
	var verrs validator.ValidationErrors
	if !goerrors.As(err, &verrs) || len(verrs) == 0 {
		return http.StatusBadRequest, ErrorResponse{
			Code:    string(errors.GeneralBadRequestError),
			Message: err.Error(),
		}
	}

	fe := verrs[0]
	code := errors.RejectMissingField
	if fe.Tag() != "required" {
		if c, ok := fieldCodes[fe.StructField()]; ok {
			code = c
		} else {
			code = errors.GeneralBadRequestError
		}
	}
	return http.StatusUnprocessableEntity, ErrorResponse{
		Code:    string(code),
		Message: fe.Error(),
		Field:   fe.Field(),
	}
}

// mapError maps a handler failure onto a status and body.
func mapError(err error) (int, ErrorResponse) {
	details := errors.AsDetails(err)
	switch {
	case details == nil:
		return http.StatusInternalServerError, ErrorResponse{
			Code:    string(errors.GeneralInternalServerError),
			Message: err.Error(),
		}
	case errors.IsReject(err):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: details.Code, Message: details.Message, Field: details.Field}
	case details.Code == string(errors.GeneralNotFoundError):
		return http.StatusNotFound, ErrorResponse{Code: details.Code, Message: details.Message}
	case details.Code == string(errors.TransientReadFailure):
		return http.StatusServiceUnavailable, ErrorResponse{Code: details.Code, Message: details.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{Code: details.Code, Message: details.Message}
}
