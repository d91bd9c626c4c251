package schedule

import (
	"fmt"
	"time"
)

// ── 冲突检测 ──────────────────────────────────────────────
//
// 两条发生记录构成冲突，当且仅当时间段重叠（半开区间）且
// 共用教师或共用地点。仅同课程 ID 不构成冲突。
// 检测返回全部冲突而非首个，是否据此拒绝写入由调用方决定。
// ─────────────────────────────────────────────────────────────

// CheckConflicts 对候选安排做全量冲突扫描。
// 展开候选的全部具体日期（受扫描周数上限约束，始终包含最后一个
// 匹配日期），逐日解析并做两两比对；单次调用内逐日解析结果复用。
func (r *Resolver) CheckConflicts(cand Candidate) ([]ConflictReport, error) {
	if err := cand.Interval.Validate(); err != nil {
		return nil, err
	}

	dates, err := r.candidateDates(cand)
	if err != nil {
		return nil, err
	}

	var reports []ConflictReport
	resolved := make(map[string][]Occurrence, len(dates))
	for _, day := range dates {
		key := day.Format(dateKeyLayout)
		occs, ok := resolved[key]
		if !ok {
			occs, err = r.ResolveForDate(day)
			if err != nil {
				return nil, err
			}
			resolved[key] = occs
		}

		for _, occ := range occs {
			if cand.excludes(occ.SourceID) {
				continue
			}
			if !cand.Interval.Overlaps(occ.Interval) {
				continue
			}
			sameTeacher := cand.Instructor != "" && cand.Instructor == occ.Instructor
			sameLocation := cand.Location != "" && cand.Location == occ.Location
			if !sameTeacher && !sameLocation {
				continue
			}
			reason := ReasonBoth
			switch {
			case sameTeacher && !sameLocation:
				reason = ReasonTeacher
			case sameLocation && !sameTeacher:
				reason = ReasonLocation
			}
			reports = append(reports, ConflictReport{
				Date:       day,
				SourceID:   occ.SourceID,
				SourceKind: occ.SourceKind,
				CourseID:   occ.CourseID,
				CourseName: occ.CourseName,
				Interval:   occ.Interval,
				Reason:     reason,
			})
		}
	}
	return reports, nil
}

// candidateDates 展开候选安排会发生的具体日期集合。
// 单日候选只有一个日期；周期候选在有效期内按 星期+单双周 步进，
// 超出扫描上限时保留前段与最后一个匹配日期（边界日期不可遗漏）。
func (r *Resolver) candidateDates(cand Candidate) ([]time.Time, error) {
	if cand.Date != nil {
		return []time.Time{Midnight(*cand.Date)}, nil
	}

	if cand.DayOfWeek < 1 || cand.DayOfWeek > 7 {
		return nil, fmt.Errorf("星期必须在 1-7 之间, 实际 %d: %w", cand.DayOfWeek, ErrValidation)
	}
	from, to := Midnight(cand.ValidFrom), Midnight(cand.ValidTo)
	if from.After(to) {
		return nil, fmt.Errorf("有效期起始 %s 晚于结束 %s: %w",
			from.Format(dateKeyLayout), to.Format(dateKeyLayout), ErrInvalidRange)
	}

	// 对齐到有效期内第一个匹配的星期几，之后按周步进
	offset := (cand.DayOfWeek - WeekdayOf(from) + 7) % 7
	var matches []time.Time
	for d := from.AddDate(0, 0, offset); !d.After(to); d = d.AddDate(0, 0, 7) {
		if parityMatches(cand.WeekType, WeekParityOf(d, r.snap.Anchor())) {
			matches = append(matches, d)
		}
	}
	if len(matches) > r.scanWeeks {
		capped := make([]time.Time, 0, r.scanWeeks)
		capped = append(capped, matches[:r.scanWeeks-1]...)
		capped = append(capped, matches[len(matches)-1])
		return capped, nil
	}
	return matches, nil
}
