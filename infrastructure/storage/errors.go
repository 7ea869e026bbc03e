package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-compare/internal/ports"
)

// SQLSTATE classes and codes that mean the server could not serve the
// request right now.
const (
	pqClassConnectionException = "08"
	pqCannotConnectNow         = "57P03"
	pqAdminShutdown            = "57P01"
)

// classify tags transport failures from the Postgres and Redis clients with
// ports.ErrTimeout or ports.ErrServiceUnavailable so that StoreError can
// report them as retryable. Other errors are returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isTimeout(err):
		return fmt.Errorf("%w: %w", ports.ErrTimeout, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %w", ports.ErrServiceUnavailable, err)
	default:
		return err
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.ErrPoolTimeout) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == pqClassConnectionException ||
			pqErr.Code == pqCannotConnectNow ||
			pqErr.Code == pqAdminShutdown
	}
	return false
}
