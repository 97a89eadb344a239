// Package errors provides the classified error primitives used across seogen.
//
// Every failure the generator can report is a ClassifiedError carrying a
// category, a severity, a retry hint and a small context map. The category
// decides how far an error travels:
//
//   - CategoryInvalidName, CategoryWriteFailure: scoped to one entity, recorded
//     in the report and skipped.
//   - CategorySlugCollision: scoped to one entity but surfaced in the report so
//     the shadowed page is discoverable.
//   - CategorySourceUnavailable: aborts one entity class (cities or products).
//   - CategoryMalformedTemplate: aborts the whole run.
//
// Example usage:
//
//	err := errors.NewError(errors.CategorySourceUnavailable, "cities endpoint returned 502").
//		WithContext("url", citiesURL).
//		WithCause(originalErr).
//		Build()
package errors
