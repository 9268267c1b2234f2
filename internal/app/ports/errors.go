package ports

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	ErrUnreachable      = errors.New("target unreachable")
	ErrMaterialShortage = errors.New("material shortage")
	ErrBlocked          = errors.New("tile blocked")
	ErrNoEnergy         = errors.New("not enough energy")
	ErrOutOfBounds      = errors.New("out of world bounds")
)

var ErrScanFailed = errors.New("scan failed")

// ScanFailedError carries the scanner's reason for a failed verdict.
type ScanFailedError struct {
	Radius int
	Reason string
}

func (e *ScanFailedError) Error() string {
	return fmt.Sprintf("scan failed at radius %d: %s", e.Radius, e.Reason)
}

func (e *ScanFailedError) Unwrap() error { return ErrScanFailed }
