package schedule

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekdayOf(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{date(2024, 9, 2), 1},  // 周一
		{date(2024, 9, 6), 5},  // 周五
		{date(2024, 9, 8), 7},  // 周日
		{date(2024, 12, 31), 2},
		{date(2025, 1, 1), 3}, // 跨年
	}
	for _, c := range cases {
		if got := WeekdayOf(c.date); got != c.want {
			t.Errorf("WeekdayOf(%s) 期望 %d, 实际 %d", c.date.Format("2006-01-02"), c.want, got)
		}
	}
}

func TestWeekParityOf(t *testing.T) {
	anchor := date(2024, 9, 2) // 周一

	cases := []struct {
		name string
		d    time.Time
		want WeekParity
	}{
		{"锚点当天为第0周(双周)", date(2024, 9, 2), ParityEven},
		{"锚点所在周的周日仍是第0周", date(2024, 9, 8), ParityEven},
		{"次周周一进入第1周(单周)", date(2024, 9, 9), ParityOdd},
		{"第2周回到双周", date(2024, 9, 16), ParityEven},
		{"跨年后周数连续", date(2025, 1, 6), ParityEven},  // 第18周
		{"跨年后次周为单周", date(2025, 1, 13), ParityOdd}, // 第19周
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := WeekParityOf(c.d, anchor); got != c.want {
				t.Errorf("WeekParityOf(%s) 期望 %s, 实际 %s", c.d.Format("2006-01-02"), c.want, got)
			}
		})
	}
}

func TestWeekParityOf_MidWeekAnchor(t *testing.T) {
	// 锚点落在周三：同一周内不得出现单双周跳变
	anchor := date(2024, 9, 4) // 周三

	if got := WeekParityOf(date(2024, 9, 2), anchor); got != ParityEven {
		t.Errorf("锚点周的周一期望 even, 实际 %s", got)
	}
	if got := WeekParityOf(date(2024, 9, 8), anchor); got != ParityEven {
		t.Errorf("锚点周的周日期望 even, 实际 %s", got)
	}
	if got := WeekParityOf(date(2024, 9, 9), anchor); got != ParityOdd {
		t.Errorf("锚点次周期望 odd, 实际 %s", got)
	}
}

func TestWeekParityOf_LeapYear(t *testing.T) {
	// 2024 为闰年，2 月有 29 天
	anchor := date(2024, 2, 26) // 周一
	if got := WeekParityOf(date(2024, 2, 29), anchor); got != ParityEven {
		t.Errorf("闰日所在周期望 even, 实际 %s", got)
	}
	if got := WeekParityOf(date(2024, 3, 4), anchor); got != ParityOdd {
		t.Errorf("闰日次周期望 odd, 实际 %s", got)
	}
}

func TestWeekIndexInCycle(t *testing.T) {
	start := date(2024, 9, 2)

	cases := []struct {
		name   string
		d      time.Time
		length int
		want   int
	}{
		{"锚点当天为第0周", date(2024, 9, 2), 2, 0},
		{"锚点周内任意一天仍是第0周", date(2024, 9, 8), 2, 0},
		{"次周为第1周", date(2024, 9, 9), 2, 1},
		{"两周后回绕到第0周", date(2024, 9, 16), 2, 0},
		{"三周轮换第2周", date(2024, 9, 16), 3, 2},
		{"三周轮换回绕", date(2024, 9, 23), 3, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := WeekIndexInCycle(c.d, start, c.length)
			if err != nil {
				t.Fatalf("WeekIndexInCycle 失败: %v", err)
			}
			if got != c.want {
				t.Errorf("期望周序号 %d, 实际 %d", c.want, got)
			}
		})
	}
}

func TestWeekIndexInCycle_BeforeAnchor(t *testing.T) {
	_, err := WeekIndexInCycle(date(2024, 9, 1), date(2024, 9, 2), 2)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("早于锚点的日期期望 ErrInvalidRange, 实际 %v", err)
	}
}

func TestWeekIndexInCycle_InvalidLength(t *testing.T) {
	_, err := WeekIndexInCycle(date(2024, 9, 9), date(2024, 9, 2), 0)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("轮换周数为 0 期望 ErrValidation, 实际 %v", err)
	}
}

func TestTimeIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b TimeInterval
		want bool
	}{
		{"完全重叠", TimeInterval{"08:00", "09:30"}, TimeInterval{"08:00", "09:30"}, true},
		{"部分重叠", TimeInterval{"08:00", "09:30"}, TimeInterval{"09:00", "10:00"}, true},
		{"包含", TimeInterval{"08:00", "12:00"}, TimeInterval{"09:00", "10:00"}, true},
		{"首尾相接不算重叠", TimeInterval{"08:00", "09:00"}, TimeInterval{"09:00", "10:00"}, false},
		{"完全错开", TimeInterval{"08:00", "09:00"}, TimeInterval{"10:00", "11:00"}, false},
		{"相差一分钟", TimeInterval{"08:00", "08:59"}, TimeInterval{"08:59", "10:00"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Overlaps(c.b); got != c.want {
				t.Errorf("%v 与 %v 重叠判定期望 %v, 实际 %v", c.a, c.b, c.want, got)
			}
			// 重叠判定必须对称
			if got := c.b.Overlaps(c.a); got != c.want {
				t.Errorf("%v 与 %v 反向重叠判定期望 %v, 实际 %v", c.b, c.a, c.want, got)
			}
		})
	}
}

func TestTimeIntervalValidate(t *testing.T) {
	if err := (TimeInterval{"08:00", "09:30"}).Validate(); err != nil {
		t.Errorf("合法时间段不应报错: %v", err)
	}
	if err := (TimeInterval{"09:30", "08:00"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("起止颠倒期望 ErrValidation, 实际 %v", err)
	}
	if err := (TimeInterval{"08:00", "08:00"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("零长度时间段期望 ErrValidation, 实际 %v", err)
	}
	if err := (TimeInterval{"8点", "09:30"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("非法格式期望 ErrValidation, 实际 %v", err)
	}
}
