package service

import "errors"

var (
	errNoFiles     = errors.New("no files provided")
	errNoDocuments = errors.New("no documents provided")
)

// ValidationError 请求本身有问题（provider 不支持、缺字段、负分页……），
// 调用方改参数就能恢复，handler 映射成 4xx
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func validationError(err error) error {
	return &ValidationError{Err: err}
}
