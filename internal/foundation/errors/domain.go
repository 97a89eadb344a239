package errors

import "fmt"

// InvalidNameError reports a display name that transliterates to nothing.
func InvalidNameError(name string) *ClassifiedError {
	return NewError(CategoryInvalidName, fmt.Sprintf("name %q produces an empty slug", name)).
		WithContext("name", name).
		Build()
}

// SlugCollisionError reports a second, different name mapping onto an existing slug.
// The page for first is kept; second is not written.
func SlugCollisionError(slug, first, second string) *ClassifiedError {
	return NewError(CategorySlugCollision, fmt.Sprintf("slug %q already taken by %q", slug, first)).
		WithContext("slug", slug).
		WithContext("first", first).
		WithContext("second", second).
		Build()
}

// SourceUnavailableError reports a failed or unparseable entity source.
func SourceUnavailableError(class, url string, cause error) *ClassifiedError {
	return WrapError(cause, CategorySourceUnavailable, fmt.Sprintf("%s source unavailable", class)).
		Retryable().
		WithContext("class", class).
		WithContext("url", url).
		Build()
}

// MalformedTemplateError reports a shell document missing a required anchor.
func MalformedTemplateError(anchor string) *ClassifiedError {
	return NewError(CategoryMalformedTemplate, fmt.Sprintf("shell document has no %s anchor", anchor)).
		Fatal().
		UserAction().
		WithContext("anchor", anchor).
		Build()
}

// WriteFailure reports a filesystem error for one output path.
func WriteFailure(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryWriteFailure, "write failed").
		WithContext("path", path).
		Build()
}
