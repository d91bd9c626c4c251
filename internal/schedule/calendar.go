package schedule

import (
	"fmt"
	"time"
)

// ── 日历工具 ──
//
// 解析引擎只关心日期，不关心时刻与时区；所有日期在进入引擎时
// 统一规整为 UTC 零点，跨月/跨年/闰年的天数运算全部交给 time 包。

// Midnight 将任意时刻规整为同一天的 UTC 零点
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayOf 返回 ISO 风格星期序号：1=周一 … 7=周日
func WeekdayOf(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// SameDate 判断两个时刻是否落在同一天
func SameDate(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// daysBetween 计算 from 到 to 的天数差（to 早于 from 时为负）
func daysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// mondayOf 返回日期所在周的周一
func mondayOf(t time.Time) time.Time {
	return Midnight(t).AddDate(0, 0, -(WeekdayOf(t) - 1))
}

// floorDiv 向负无穷取整的整数除法
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// WeekParityOf 计算日期相对学期锚点的单双周。
// 锚点所在周记为第 0 周，周数为偶数即为双周（even）。
// 按周一对齐，锚点落在周中不会导致同一周内单双周跳变。
func WeekParityOf(date, anchor time.Time) WeekParity {
	weeks := floorDiv(daysBetween(mondayOf(anchor), Midnight(date)), 7)
	if weeks%2 == 0 {
		return ParityEven
	}
	return ParityOdd
}

// WeekIndexInCycle 计算日期在轮换模板中的活动周序号：
// floor(daysBetween(cycleStart, date) / 7) mod cycleLength。
// 日期早于锚点属于范围错误，拒绝而非钳制。
func WeekIndexInCycle(date, cycleStart time.Time, cycleLength int) (int, error) {
	if cycleLength < 1 {
		return 0, fmt.Errorf("轮换周数必须 >= 1, 实际 %d: %w", cycleLength, ErrValidation)
	}
	days := daysBetween(cycleStart, date)
	if days < 0 {
		return 0, fmt.Errorf("日期 %s 早于轮换锚点 %s: %w",
			Midnight(date).Format("2006-01-02"), Midnight(cycleStart).Format("2006-01-02"), ErrInvalidRange)
	}
	return (days / 7) % cycleLength, nil
}

// parityMatches 判断安排的周类型是否匹配给定单双周
func parityMatches(weekType string, parity WeekParity) bool {
	return weekType == string(ParityAll) || weekType == string(parity)
}
