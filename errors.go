package formiq

import (
	"errors"
	"fmt"
)

var (
	// ErrFormNotFound reports that no form matched the lookup used to build a session.
	ErrFormNotFound = errors.New("formiq: form not found")
	// ErrConversion is matched by every ConversionError.
	ErrConversion = errors.New("formiq: conversion failed")
	// ErrIndexOutOfRange is matched by every IndexError.
	ErrIndexOutOfRange = errors.New("formiq: sequence index out of range")
	// ErrDestroyed is matched by every LifecycleError.
	ErrDestroyed = errors.New("formiq: session destroyed")
	// ErrUnsupported reports that the host form does not implement an optional capability.
	ErrUnsupported = errors.New("formiq: operation not supported by form")
)

// ConstructionError is returned when a session cannot be bound to a form.
type ConstructionError struct {
	Selector string
	Err      error
}

func (e *ConstructionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Selector == "" {
		return fmt.Sprintf("formiq: construct session: %v", e.Err)
	}
	return fmt.Sprintf("formiq: construct session selector=%q: %v", e.Selector, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConversionError reports a converter failure. It aborts the decode pass that
// triggered it.
type ConversionError struct {
	Field     string
	Converter string
	Value     string
	Err       error
}

func (e *ConversionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("formiq: converter %q field=%q value=%q: %v", e.Converter, e.Field, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrConversion so callers can match without errors.As.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// IndexError reports an encode pass where a sequence held fewer elements than
// there are same-named fields to write.
type IndexError struct {
	Field  string
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("formiq: field %q: index %d out of range for sequence of length %d", e.Field, e.Index, e.Length)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// LifecycleError is returned by every operation on a destroyed session.
type LifecycleError struct {
	Op string
}

func (e *LifecycleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("formiq: %s: session destroyed", e.Op)
}

func (e *LifecycleError) Is(target error) bool {
	return target == ErrDestroyed
}

// Failure lets a validator predicate report a failure with its own kind.
type Failure struct {
	Kind    string
	Message string
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Message == "" {
		return fmt.Sprintf("formiq: validation failed: %s", f.Kind)
	}
	return fmt.Sprintf("formiq: validation failed: %s: %s", f.Kind, f.Message)
}

// Fail builds a Failure for kind.
func Fail(kind string) *Failure {
	return &Failure{Kind: kind}
}

type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
