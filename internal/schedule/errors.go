package schedule

import "errors"

// ── 解析引擎错误分类 ──
//
// 引用缺失（ErrNotFound）一律向上传播：缺了课程的课表看似完整、
// 实则残缺，比显式报错更危险。冲突不是错误，CheckConflicts 始终
// 返回（可能为空的）报告列表。

var (
	// ErrNotFound 引用的课程/安排/模板不存在
	ErrNotFound = errors.New("引用的记录不存在")
	// ErrInvalidRange 日期顺序非法，或查询日期早于轮换模板锚点
	ErrInvalidRange = errors.New("日期范围无效")
	// ErrValidation 结构性非法输入（轮换周数 < 1、时间段起止颠倒等）
	ErrValidation = errors.New("输入数据无效")
)
