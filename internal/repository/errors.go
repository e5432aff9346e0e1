package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 一意制約違反（注文番号・電話番号の重複など）、
	// またはステータスの条件付き更新で前提が崩れた場合。
	ErrConflict = errors.New("conflict")
)
