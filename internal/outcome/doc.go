// Package outcome defines the result taxonomy shared by the conversion
// executor, the conversion service and the HTTP handlers.
//
// A conversion ends in exactly one Kind. The executor reports an Outcome;
// the service turns failed outcomes and validation problems into *Error,
// which the HTTP layer maps onto status codes with errors.As.
package outcome
