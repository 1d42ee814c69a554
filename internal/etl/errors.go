package etl

import "fmt"

// ReadError reports a failed fetch or parse of the raw object. It aborts
// the invocation; the event source is responsible for re-delivery.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s failed: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteBackError reports a failed save of the transformed object.
type WriteBackError struct {
	Key string
	Err error
}

func (e *WriteBackError) Error() string {
	return fmt.Sprintf("write-back to %s failed: %v", e.Key, e.Err)
}

func (e *WriteBackError) Unwrap() error { return e.Err }
