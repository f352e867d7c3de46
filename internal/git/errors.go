package git

import (
	stderrors "errors"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
)

// classify turns go-git errors into ClassifiedErrors. Network failures stay
// retryable; auth, missing repository or branch and bad URLs need the operator.
func classify(err error, op, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	builder := errors.WrapError(err, errors.CategoryGit, "git "+op+" failed").
		Retryable().
		WithContext("op", op).
		WithContext("url", url)

	l := strings.ToLower(err.Error())
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired),
		stderrors.Is(err, transport.ErrAuthorizationFailed),
		strings.Contains(l, "authentication"):
		builder.UserAction().WithContext("reason", "auth")
	case stderrors.Is(err, transport.ErrRepositoryNotFound),
		strings.Contains(l, "couldn't find remote ref"),
		strings.Contains(l, "reference not found"):
		builder.UserAction().WithContext("reason", "not_found")
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		builder.UserAction().WithContext("reason", "protocol")
	}
	return builder.Build()
}
