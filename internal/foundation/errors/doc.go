// Package errors provides classified error primitives used across gitbook2mkdocs.
//
// A ClassifiedError carries a category (config, filesystem, translate, hook, ...),
// a severity and a retry hint. The CLI adapter maps categories to exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "copy assets").
//		WithContext("path", dst).
//		Build()
package errors
