package schedule

import (
	"fmt"
	"time"

	"timenest/backend/internal/model"
)

// ── 轮换模板解析 ──

// ValidatePattern 校验轮换模板的结构合法性：
// 周数 >= 1、周序号落在 [0, cycleLength)、星期合法、
// 同一 (周序号, 星期) 至多一条条目（重复条目会以相同来源标识
// 展开两次，模板内部不得自相冲突或重复）。
func ValidatePattern(p model.CyclePattern) error {
	if p.CycleLength < 1 {
		return fmt.Errorf("轮换周数必须 >= 1, 实际 %d: %w", p.CycleLength, ErrValidation)
	}
	seen := make(map[[2]int]string, len(p.Entries))
	for _, e := range p.Entries {
		if e.WeekIndex < 0 || e.WeekIndex >= p.CycleLength {
			return fmt.Errorf("周序号 %d 超出 [0, %d): %w", e.WeekIndex, p.CycleLength, ErrValidation)
		}
		if e.DayOfWeek < 1 || e.DayOfWeek > 7 {
			return fmt.Errorf("星期必须在 1-7 之间, 实际 %d: %w", e.DayOfWeek, ErrValidation)
		}
		if e.CourseID == "" {
			return fmt.Errorf("轮换条目缺少课程 ID: %w", ErrValidation)
		}
		key := [2]int{e.WeekIndex, e.DayOfWeek}
		if prev, ok := seen[key]; ok {
			if prev == e.CourseID {
				return fmt.Errorf("第 %d 周周 %d 重复配置了课程 %s: %w", e.WeekIndex, e.DayOfWeek, e.CourseID, ErrValidation)
			}
			return fmt.Errorf("第 %d 周周 %d 配置了多门课程: %w", e.WeekIndex, e.DayOfWeek, ErrValidation)
		}
		seen[key] = e.CourseID
	}
	return nil
}

// cycleSourceID 轮换发生记录的来源标识，调课记录以此定位目标
func cycleSourceID(patternID string, e model.CycleEntry) string {
	return fmt.Sprintf("%s#%d-%d", patternID, e.WeekIndex, e.DayOfWeek)
}

// ResolveCycle 展开轮换模板在指定日期的发生记录。
// 日期早于模板锚点、或活动周该星期无安排时返回空列表（不是错误）；
// 仅当条目引用的课程不存在时返回 ErrNotFound。
func (r *Resolver) ResolveCycle(p model.CyclePattern, date time.Time) ([]Occurrence, error) {
	day := Midnight(date)
	if day.Before(Midnight(p.StartDate)) {
		return nil, nil
	}

	idx, err := WeekIndexInCycle(day, p.StartDate, p.CycleLength)
	if err != nil {
		return nil, err
	}
	wd := WeekdayOf(day)

	var result []Occurrence
	for _, e := range p.Entries {
		if e.WeekIndex != idx || e.DayOfWeek != wd {
			continue
		}
		course, err := r.snap.Course(e.CourseID)
		if err != nil {
			return nil, fmt.Errorf("轮换模板 %s: %w", p.PatternID, err)
		}
		result = append(result, occurrenceOf(day, course, SourceCycle, cycleSourceID(p.PatternID, e)))
	}
	return result, nil
}
