package domain

import "errors"

// 领域层错误类型。接口层通过 errors.Is 映射到 HTTP 状态码。
var (
	// ErrInvalidOrder 订单校验失败（价格/数量非正、用户ID为空等），拒绝于任何状态变更之前
	ErrInvalidOrder = errors.New("invalid order")
	// ErrPrecisionViolation 撮合过程中出现非法数值（负数或超出精度范围），整个撮合回合必须中止
	ErrPrecisionViolation = errors.New("precision violation")
	// ErrStoreConflict 持久化写入冲突或存储不可用，整个回合回滚，不允许出现部分提交
	ErrStoreConflict = errors.New("store conflict")
)
