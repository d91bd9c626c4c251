package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"timenest/backend/internal/schedule"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 将标准 iCalendar (RFC 5545) 内容解析为课程导入条目：
//   - SUMMARY → 课程名，LOCATION → 地点
//   - DTSTART/DTEND 确定星期几与时间段
//   - RRULE(FREQ=WEEKLY) 展开重复日期，EXDATE 剔除例外
//   - 同 名称+星期+时间段 的事件合并为一个条目
//   - 相邻重复日期间隔两周时推导为单周/双周安排
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	icsDefaultLength = 2 * time.Hour   // 缺失 DTEND 时的默认时长
	localTimezone    = "Asia/Shanghai"
)

// icsImportEntry ICS 解析产出的单个课程条目
type icsImportEntry struct {
	Name      string
	Location  string
	DayOfWeek int // 1=周一 … 7=周日
	StartTime string
	EndTime   string
	Dates     []time.Time // 全部发生日期，升序
}

// FirstDate 条目最早的发生日期
func (e *icsImportEntry) FirstDate() time.Time { return e.Dates[0] }

// LastDate 条目最晚的发生日期
func (e *icsImportEntry) LastDate() time.Time { return e.Dates[len(e.Dates)-1] }

// WeekType 根据发生日期相对锚点的奇偶分布推导 week_type
func (e *icsImportEntry) WeekType(anchor time.Time) string {
	sawOdd, sawEven := false, false
	for _, d := range e.Dates {
		switch schedule.WeekParityOf(d, anchor) {
		case schedule.ParityOdd:
			sawOdd = true
		case schedule.ParityEven:
			sawEven = true
		}
	}
	switch {
	case sawOdd && !sawEven:
		return "odd"
	case sawEven && !sawOdd:
		return "even"
	default:
		return "all"
	}
}

// parseICSEntries 解析 ICS 数据流并合并为课程条目
func parseICSEntries(reader io.Reader) ([]icsImportEntry, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	loc, _ := time.LoadLocation(localTimezone)

	var entries []icsImportEntry
	for _, evt := range cal.Events() {
		entry, ok := parseICSEvent(evt, loc)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	merged := mergeICSEntries(entries)
	for i := range merged {
		sort.Slice(merged[i].Dates, func(a, b int) bool {
			return merged[i].Dates[a].Before(merged[i].Dates[b])
		})
	}
	return merged, nil
}

// parseICSEvent 解析单个 VEVENT
func parseICSEvent(evt *ics.VEvent, loc *time.Location) (icsImportEntry, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return icsImportEntry{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return icsImportEntry{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		dtEnd = dtStart.Add(icsDefaultLength)
	}

	location := ""
	if prop := evt.GetProperty(ics.ComponentPropertyLocation); prop != nil {
		location = strings.TrimSpace(prop.Value)
	}

	dates := expandICSDates(evt, dtStart, loc)
	if len(dates) == 0 {
		return icsImportEntry{}, false
	}

	return icsImportEntry{
		Name:      strings.TrimSpace(summary.Value),
		Location:  location,
		DayOfWeek: schedule.WeekdayOf(dtStart),
		StartTime: dtStart.Format("15:04"),
		EndTime:   dtEnd.Format("15:04"),
		Dates:     dates,
	}, true
}

// expandICSDates 根据 RRULE / EXDATE 展开事件的全部发生日期
func expandICSDates(evt *ics.VEvent, dtStart time.Time, loc *time.Location) []time.Time {
	first := schedule.Midnight(dtStart)

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		return []time.Time{first}
	}

	rule := parseRRule(rruleProp.Value)
	if rule.freq != "WEEKLY" {
		return []time.Time{first}
	}

	interval := rule.interval
	if interval < 1 {
		interval = 1
	}
	// 无 COUNT / UNTIL 时限制展开上限，防止无界规则
	maxOccurrences := rule.count
	if maxOccurrences <= 0 {
		maxOccurrences = 60
	}

	exDates := parseExDates(evt, loc)

	var dates []time.Time
	current := first
	for i := 0; i < maxOccurrences; i++ {
		if !rule.until.IsZero() && current.After(schedule.Midnight(rule.until)) {
			break
		}
		if !exDates[current.Format("20060102")] {
			dates = append(dates, current)
		}
		current = current.AddDate(0, 0, 7*interval)
	}
	return dates
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=2）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		t, err := time.Parse("20060102T150405Z", prop.Value)
		if err != nil {
			t, err = time.ParseInLocation("20060102T150405", prop.Value, loc)
			if err != nil {
				t, err = time.Parse("20060102", prop.Value)
			}
		}
		if err == nil {
			exDates[t.In(loc).Format("20060102")] = true
		}
	}
	return exDates
}

// parseICSDateTime 解析 DTSTART/DTEND 属性值
func parseICSDateTime(evt *ics.VEvent, name ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(name)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少属性 %s", name)
	}

	value := prop.Value
	// UTC 形式
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t.In(loc), nil
	}
	// 本地时间形式
	if t, err := time.ParseInLocation("20060102T150405", value, loc); err == nil {
		return t, nil
	}
	// 纯日期形式
	if t, err := time.ParseInLocation("20060102", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("无法解析时间值 %q", value)
}

// mergeICSEntries 合并 名称+星期+时间段 相同的事件（ICS 常以多个
// 单次事件表示同一课程的不同周次）
func mergeICSEntries(entries []icsImportEntry) []icsImportEntry {
	type key struct {
		Name      string
		DayOfWeek int
		StartTime string
		EndTime   string
	}

	merged := make(map[key]*icsImportEntry)
	var order []key
	for _, e := range entries {
		k := key{Name: e.Name, DayOfWeek: e.DayOfWeek, StartTime: e.StartTime, EndTime: e.EndTime}
		if existing, ok := merged[k]; ok {
			seen := make(map[string]bool, len(existing.Dates))
			for _, d := range existing.Dates {
				seen[d.Format("20060102")] = true
			}
			for _, d := range e.Dates {
				if !seen[d.Format("20060102")] {
					existing.Dates = append(existing.Dates, d)
				}
			}
			if existing.Location == "" {
				existing.Location = e.Location
			}
		} else {
			cp := e
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]icsImportEntry, 0, len(merged))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result
}
