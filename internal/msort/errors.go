package msort

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidArgument 알 수 없는 모드, 음수 예산 등 잘못된 호출 인자
	ErrInvalidArgument = errors.New("msort: invalid argument")
	// ErrSizeMismatch 병합 대상 버퍼가 left+right 보다 작음
	ErrSizeMismatch = errors.New("msort: destination smaller than merged input")
)
