package kerrors

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusFileExists, StatusOf(AlreadyExists("x")))
	assert.Equal(t, StatusInternalError, StatusOf(errors.New("boom")))

	wrapped := fmt.Errorf("service: %w", NotFound(StatusPathNotFound, "dir"))
	assert.Equal(t, StatusPathNotFound, StatusOf(wrapped))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestFailuresCollapseToInternalError(t *testing.T) {
	assert.Equal(t, StatusInternalError, StatusOf(StorageFailure("no rows")))
	assert.Equal(t, StatusInternalError, StatusOf(Unexpected("panic", errors.New("nil map"))))
	assert.NotEqual(t, KindOf(StorageFailure("no rows")), KindOf(Unexpected("panic", nil)))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unexpected("lookup", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestErrno(t *testing.T) {
	assert.Equal(t, syscall.Errno(0), StatusSuccess.Errno())
	assert.Equal(t, syscall.ENOENT, StatusFileNotFound.Errno())
	assert.Equal(t, syscall.ENOENT, StatusPathNotFound.Errno())
	assert.Equal(t, syscall.EEXIST, StatusFileExists.Errno())
	assert.Equal(t, syscall.ENOTDIR, StatusNotADirectory.Errno())
	assert.Equal(t, syscall.EACCES, StatusAccessDenied.Errno())
	assert.Equal(t, syscall.EIO, StatusInternalError.Errno())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "FileNotFound", StatusFileNotFound.String())
	assert.Equal(t, "Status(0x00000001)", Status(1).String())
}
