// Package errs 定义所有管理操作返回的错误类型，调用方用 errors.Is 判断
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTransaction      = errors.New("transaction failed")
	ErrInvalidArgument  = errors.New("invalid argument")
)

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func PermissionDenied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Transaction 包装存储层错误；已带业务类型的错误原样返回（回滚后的 NotFound 仍是 NotFound）
func Transaction(err error) error {
	if err == nil || IsDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransaction, err)
}

// IsDomain err 是否已经带有上面某种类型
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrTransaction)
}
