package eventstore

import (
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
)

// Sentinel errors for journal operations. Callers match them with errors.Is;
// category and message identify them.
var (
	ErrDatabaseOpenFailed     = errors.StoreError("could not open build journal").Build()
	ErrInitializeSchemaFailed = errors.StoreError("failed to initialize build journal schema").Build()
	ErrEventAppendFailed      = errors.StoreError("failed to append event to journal").Build()
	ErrEventQueryFailed       = errors.StoreError("failed to query journal").Build()
	ErrMarshalPayloadFailed   = errors.StoreError("failed to marshal event payload").Build()
	ErrUnmarshalPayloadFailed = errors.StoreError("failed to unmarshal event payload").Build()
)

// wrap starts an error that matches sentinel under errors.Is and unwraps to cause.
func wrap(sentinel *errors.ClassifiedError, cause error) *errors.ErrorBuilder {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message())
}
