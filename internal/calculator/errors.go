package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientHistory means the series is shorter than the indicator's lookback.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrUnknownIndicator means the indicator code is not supported.
	ErrUnknownIndicator = errors.New("unknown indicator")
)

func requireBars(code string, have, need int) error {
	if have < need {
		return fmt.Errorf("%w: %s needs %d bars, have %d", ErrInsufficientHistory, code, need, have)
	}
	return nil
}
