package httperr

import "errors"

// BusinessError is a rule violation identified by a stable code. The code
// doubles as the message key prefix on the page side.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// CodeOf returns the business code carried by err, or "".
func CodeOf(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsBusiness(err error, code string) bool {
	c := CodeOf(err)
	return c != "" && c == code
}
