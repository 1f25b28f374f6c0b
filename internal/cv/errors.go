package cv

import "errors"

// 领域层哨兵错误；HTTP 层负责翻译为状态码。
var (
	// ErrNotFound 表示按 ID 查找的 CV 或 Section 不存在。
	ErrNotFound = errors.New("not found")

	// ErrShapeMismatch 表示 Section 的 content 与其 type 声明的结构不符。
	ErrShapeMismatch = errors.New("section content shape mismatch")

	// ErrInvalidTemplate 表示模板 ID 不在内置集合中。
	ErrInvalidTemplate = errors.New("unknown template id")

	// ErrInvariantViolation 表示一次重排没有保持原有 Section ID 集合。
	ErrInvariantViolation = errors.New("section sequence invariant violation")
)
