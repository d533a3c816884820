package zuora

import (
	"fmt"

	"github.com/rayjohnson/zuora/pkg/soap"
)

// Fault is the one error type this package introduces. It wraps exactly two
// failure classes: transport-level I/O errors and protocol-level SOAP
// faults. Everything else propagates unchanged.
type Fault struct {
	// Code is the SOAP fault code, empty for transport failures.
	Code string

	// Message preserves the underlying failure message.
	Message string

	cause error
}

func (f *Fault) Error() string {
	if f.Code != "" {
		return fmt.Sprintf("zuora: %s: %s", f.Code, f.Message)
	}
	return fmt.Sprintf("zuora: %s", f.Message)
}

func (f *Fault) Unwrap() error {
	return f.cause
}

// transportFault wraps a transport-level failure.
func transportFault(err error) *Fault {
	return &Fault{Message: err.Error(), cause: err}
}

// soapFault wraps a decoded protocol-level fault.
func soapFault(f *soap.Fault) *Fault {
	return &Fault{Code: f.Code, Message: f.String}
}
