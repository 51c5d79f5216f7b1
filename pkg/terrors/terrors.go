package terrors

import (
	"errors"
	"fmt"
)

var (
	ErrArg            = errors.New("arg error")
	ErrNoArgsProvided = fmt.Errorf("%w: no args provided error", ErrArg)
	ErrEmptyText      = errors.New("empty text error")
	ErrParse          = errors.New("failed to parse error")
	ErrValue          = errors.New("value error")
	ErrNotFound       = errors.New("not found error")
	ErrType           = errors.New("type error")
	ErrConf           = errors.New("config error")
	ErrIO             = errors.New("io error")

	// Parse pipeline error classes. Every error produced by pkg/ical
	// wraps exactly one of these, on top of ErrParse.
	ErrLexical    = fmt.Errorf("%w: lexical error", ErrParse)
	ErrStructural = fmt.Errorf("%w: structural error", ErrParse)
	ErrValidation = fmt.Errorf("%w: validation error", ErrParse)
	ErrSemantic   = fmt.Errorf("%w: semantic error", ErrParse)
)

func ErrorArgNotProvided(field string) error {
	return fmt.Errorf("%w: arg '%s' not provided error", ErrArg, field)
}

func ErrorArgParse(arg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %w: arg %s", ErrArg, ErrParse, arg)
	}
	return fmt.Errorf("%w: %w: arg %s: %w", ErrArg, ErrParse, arg, err)
}
