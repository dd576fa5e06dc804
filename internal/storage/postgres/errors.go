package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"staydesk/internal/storage"

	"github.com/lib/pq"
)

const (
	codeExclusionViolation  pq.ErrorCode = "23P01"
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeCheckViolation      pq.ErrorCode = "23514"
	codeSerialization       pq.ErrorCode = "40001"
	codeDeadlock            pq.ErrorCode = "40P01"
	codeAdminShutdown       pq.ErrorCode = "57P01"
	codeTooManyConnections  pq.ErrorCode = "53300"

	classConnection pq.ErrorClass = "08"
)

// classify maps driver failures onto the storage error kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeExclusionViolation:
			return fmt.Errorf("%w: %s", storage.ErrBookingConflict, pqErr.Message)
		case pqErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", storage.ErrRoomNotFound, pqErr.Message)
		case pqErr.Code == codeCheckViolation:
			return fmt.Errorf("%w: %s", storage.ErrInvalidRecord, pqErr.Message)
		case pqErr.Code.Class() == classConnection,
			pqErr.Code == codeSerialization,
			pqErr.Code == codeDeadlock,
			pqErr.Code == codeAdminShutdown,
			pqErr.Code == codeTooManyConnections:
			return storage.Transient(err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) {
		return storage.Transient(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return storage.Transient(err)
	}
	return err
}

// commitOutcomeUnknown reports whether a failed COMMIT left no answer from the
// server. A server-side error such as 40001 means the transaction rolled back
// and is safe to rerun. A lost connection does not say either way.
func commitOutcomeUnknown(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == classConnection || pqErr.Code == codeAdminShutdown
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
