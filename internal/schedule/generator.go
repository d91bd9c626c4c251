package schedule

import (
	"fmt"
	"sort"
	"time"

	"timenest/backend/internal/model"
)

// ── 轮换模板落盘生成 ──
//
// 用户把轮换模板固化为普通周期性安排时，按周展开模板并生成
// 等价的 RecurringPlan 集合。纯函数：相同输入恒产生相同输出，
// 不直接写存储，持久化由调用方完成。

// Materialize 将轮换模板在 [startDate, startDate+weekCount*7) 内
// 展开为等价的周期性安排。连续多周 (星期, 课程) 相同的安排
// 合并为一条更宽有效期的记录。
func Materialize(pattern model.CyclePattern, startDate time.Time, weekCount int) ([]model.RecurringPlan, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	if weekCount < 1 {
		return nil, fmt.Errorf("展开周数必须 >= 1, 实际 %d: %w", weekCount, ErrValidation)
	}

	start := Midnight(startDate)
	startWD := WeekdayOf(start)

	// (星期, 课程) → 出现的周序号列表
	type slotKey struct {
		dayOfWeek int
		courseID  string
	}
	weeksBySlot := make(map[slotKey][]int)
	for w := 0; w < weekCount; w++ {
		idx := w % pattern.CycleLength
		for _, e := range pattern.Entries {
			if e.WeekIndex != idx {
				continue
			}
			key := slotKey{dayOfWeek: e.DayOfWeek, courseID: e.CourseID}
			weeksBySlot[key] = append(weeksBySlot[key], w)
		}
	}

	// 第 w 周内星期 wd 对应的具体日期
	dateOf := func(w, wd int) time.Time {
		return start.AddDate(0, 0, 7*w+(wd-startWD+7)%7)
	}

	var plans []model.RecurringPlan
	for key, weeks := range weeksBySlot {
		sort.Ints(weeks)
		runStart := weeks[0]
		prev := weeks[0]
		emit := func(w1, w2 int) {
			plans = append(plans, model.RecurringPlan{
				CourseID:  key.courseID,
				DayOfWeek: key.dayOfWeek,
				WeekType:  string(ParityAll),
				ValidFrom: dateOf(w1, key.dayOfWeek),
				ValidTo:   dateOf(w2, key.dayOfWeek),
			})
		}
		for _, w := range weeks[1:] {
			if w == prev+1 {
				prev = w
				continue
			}
			emit(runStart, prev)
			runStart, prev = w, w
		}
		emit(runStart, prev)
	}

	sort.Slice(plans, func(i, j int) bool {
		if plans[i].DayOfWeek != plans[j].DayOfWeek {
			return plans[i].DayOfWeek < plans[j].DayOfWeek
		}
		if plans[i].CourseID != plans[j].CourseID {
			return plans[i].CourseID < plans[j].CourseID
		}
		return plans[i].ValidFrom.Before(plans[j].ValidFrom)
	})
	return plans, nil
}
