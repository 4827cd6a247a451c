package apperr

import "github.com/fekuna/storefront-inventory-service/internal/store"

// FromStore translates a repository error into a domain error. dupMessageID is
// the message for unique violations, fkRef names the entity a foreign key
// violation points at. Errors that are not store errors are returned as is.
func FromStore(err error, dupMessageID string, fkRef Reference) error {
	if err == nil {
		return nil
	}
	switch store.CodeOf(err) {
	case "":
		return err
	case store.CodeUniqueViolation:
		return Duplicate(dupMessageID, err)
	case store.CodeForeignKeyViolation:
		return Referential(fkRef, err)
	case store.CodeNotFound:
		return &Error{Kind: KindNotFound, MessageID: "error.not_found." + string(fkRef), Ref: fkRef, Err: err}
	case store.CodeUndefinedTable:
		return &Error{Kind: KindTransport, MessageID: "error.undefined_table", Err: err}
	default:
		return Transport(err)
	}
}
