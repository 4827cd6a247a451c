package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDuplicate
	KindReferential
	KindNotFound
	KindInventoryInconsistency
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindReferential:
		return "referential"
	case KindNotFound:
		return "not_found"
	case KindInventoryInconsistency:
		return "inventory_inconsistency"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Reference names the entity a referential or not-found error is about.
type Reference string

const (
	RefProduct     Reference = "product"
	RefAttribute   Reference = "attribute"
	RefCategory    Reference = "category"
	RefSubcategory Reference = "subcategory"
	RefVariant     Reference = "variant"
	RefStockOrder  Reference = "stock_order"
)

// Error is a classified failure. MessageID keys the localized user message.
type Error struct {
	Kind      Kind
	MessageID string
	Ref       Reference
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Ref != "" {
		msg += " " + string(e.Ref)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so callers can write errors.Is(err, apperr.ErrDuplicate).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Ref == "" || t.Ref == e.Ref)
}

var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrDuplicate              = &Error{Kind: KindDuplicate}
	ErrReferential            = &Error{Kind: KindReferential}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInventoryInconsistency = &Error{Kind: KindInventoryInconsistency}
	ErrTransport              = &Error{Kind: KindTransport}
)

func Validation(messageID, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, MessageID: messageID, Detail: fmt.Sprintf(format, args...)}
}

func Duplicate(messageID string, err error) *Error {
	return &Error{Kind: KindDuplicate, MessageID: messageID, Err: err}
}

func Referential(ref Reference, err error) *Error {
	return &Error{Kind: KindReferential, MessageID: "error.referential." + string(ref), Ref: ref, Err: err}
}

func NotFound(ref Reference, id string) *Error {
	return &Error{Kind: KindNotFound, MessageID: "error.not_found." + string(ref), Ref: ref, Detail: id}
}

func Transport(err error) *Error {
	return &Error{Kind: KindTransport, MessageID: "error.transport", Err: err}
}

// Inconsistency is the non-fatal warning attached to results whose primary effect
// succeeded but whose ledger bookkeeping did not.
func Inconsistency(messageID, format string, args ...any) *Error {
	return &Error{Kind: KindInventoryInconsistency, MessageID: messageID, Detail: fmt.Sprintf(format, args...)}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
