package kerrors

import (
	"errors"
	"fmt"
	"syscall"
)

// Status is the NTSTATUS value reported to drivers.
type Status uint32

const (
	StatusSuccess          Status = 0x00000000
	StatusAccessDenied     Status = 0xC0000022
	StatusFileNotFound     Status = 0xC0000034 // STATUS_OBJECT_NAME_NOT_FOUND
	StatusFileExists       Status = 0xC0000035 // STATUS_OBJECT_NAME_COLLISION
	StatusPathNotFound     Status = 0xC000003A // STATUS_OBJECT_PATH_NOT_FOUND
	StatusNotADirectory    Status = 0xC0000103
	StatusInternalError    Status = 0xC00000E5
	StatusInvalidParameter Status = 0xC000000D
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusAccessDenied:
		return "AccessDenied"
	case StatusFileNotFound:
		return "FileNotFound"
	case StatusFileExists:
		return "FileExists"
	case StatusPathNotFound:
		return "PathNotFound"
	case StatusNotADirectory:
		return "NotADirectory"
	case StatusInternalError:
		return "InternalError"
	case StatusInvalidParameter:
		return "InvalidParameter"
	default:
		return fmt.Sprintf("Status(0x%08X)", uint32(s))
	}
}

func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// Errno maps a status to the Linux error code.
func (s Status) Errno() syscall.Errno {
	switch s {
	case StatusSuccess:
		return 0
	case StatusFileNotFound, StatusPathNotFound:
		return syscall.ENOENT
	case StatusFileExists:
		return syscall.EEXIST
	case StatusNotADirectory:
		return syscall.ENOTDIR
	case StatusAccessDenied:
		return syscall.EACCES
	case StatusInvalidParameter:
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindAlreadyExists
	KindTypeMismatch
	KindAccessDenied
	KindStorageFailure    // storage reported no affected rows
	KindUnexpectedFailure // error or panic from storage or mapping
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindTypeMismatch:
		return "type mismatch"
	case KindAccessDenied:
		return "access denied"
	case KindStorageFailure:
		return "storage failure"
	case KindUnexpectedFailure:
		return "unexpected failure"
	default:
		return "unknown"
	}
}

// Error is an engine outcome carrying both its taxonomy kind and the
// status a driver sees.
type Error struct {
	Kind    Kind
	Status  Status
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(status Status, message string) *Error {
	return &Error{Kind: KindNotFound, Status: status, Message: message}
}

func AlreadyExists(message string) *Error {
	return &Error{Kind: KindAlreadyExists, Status: StatusFileExists, Message: message}
}

func TypeMismatch(status Status, message string) *Error {
	return &Error{Kind: KindTypeMismatch, Status: status, Message: message}
}

func AccessDenied(message string) *Error {
	return &Error{Kind: KindAccessDenied, Status: StatusAccessDenied, Message: message}
}

func StorageFailure(message string) *Error {
	return &Error{Kind: KindStorageFailure, Status: StatusInternalError, Message: message}
}

func Unexpected(message string, err error) *Error {
	return &Error{Kind: KindUnexpectedFailure, Status: StatusInternalError, Message: message, Err: err}
}

// StatusOf reports the status for err. nil is success and errors outside
// the taxonomy are internal errors.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusInternalError
}

// KindOf reports the taxonomy kind of err.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpectedFailure
}
