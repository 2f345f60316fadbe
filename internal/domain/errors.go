package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPlan marks malformed rules, bad parameters and dangling references.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrUnsupported marks inputs the engine cannot satisfy, such as FK cycles.
	ErrUnsupported = errors.New("unsupported")
)

func InvalidPlanf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPlan, fmt.Sprintf(format, args...))
}

func Unsupportedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

func IsInvalidPlan(err error) bool { return errors.Is(err, ErrInvalidPlan) }

func IsUnsupported(err error) bool { return errors.Is(err, ErrUnsupported) }
