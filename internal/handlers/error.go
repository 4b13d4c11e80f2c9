package handlers

import "errors"

// ApiResponseError carries an HTTP status and the JSON body that should
// go with it out of helpers that run inside transactions.
type ApiResponseError struct {
	Status int
	Body   interface{}
}

func (e *ApiResponseError) Error() string {
	return "api error response"
}

func NewApiResponseError(status int, body interface{}) *ApiResponseError {
	return &ApiResponseError{
		Status: status,
		Body:   body,
	}
}

// asApiError extracts an ApiResponseError from an error that bubbled
// out of a transaction, or nil when the failure came from the store.
func asApiError(err error) *ApiResponseError {
	var apiErr *ApiResponseError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
