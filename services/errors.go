package services

import "fmt"

// InvalidQueryError rejects a request before any backend call is made.
type InvalidQueryError struct {
	Field string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("no %s provided", e.Field)
}

// EmbeddingError wraps a failure from the embedding backend. The upstream
// message is preserved for the error response body.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreQueryError wraps a failure from the document store.
type StoreQueryError struct {
	Op  string
	Err error
}

func (e *StoreQueryError) Error() string {
	return fmt.Sprintf("store query %s failed: %v", e.Op, e.Err)
}

func (e *StoreQueryError) Unwrap() error { return e.Err }

// MalformedTopicsError means a string-encoded topics field could not be
// decoded as a plain literal list. Assembly logs it and keeps going with an
// empty topic list.
type MalformedTopicsError struct {
	Reason string
}

func (e *MalformedTopicsError) Error() string {
	return fmt.Sprintf("malformed topics value: %s", e.Reason)
}
