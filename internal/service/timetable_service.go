package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"timenest/backend/config"
	"timenest/backend/internal/dto"
	"timenest/backend/internal/model"
	"timenest/backend/internal/repository"
	"timenest/backend/internal/schedule"
	"timenest/backend/pkg/redis"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableDateInvalid  = errors.New("日期格式非法，应为 YYYY-MM-DD")
	ErrTimetableRangeInvalid = errors.New("查询范围非法")
	ErrTimetableResolveFail  = errors.New("课表解析失败")
	ErrImportNoEvents        = errors.New("ICS 内容中没有可导入的课程事件")
	ErrExportGenerateFail    = errors.New("生成导出文件失败")
)

// exportRangeMaxDays 单次 ICS 导出的最大天数
const exportRangeMaxDays = 400

// TimetableService 课表解析业务接口
//
// 解析始终基于调用时刻装载的数据快照；单日结果经 Redis 按
// 数据版本缓存，任何写入递增版本号使全部旧缓存失效。
type TimetableService interface {
	GetDay(ctx context.Context, date string) (*dto.DayScheduleResponse, error)
	GetWeek(ctx context.Context, date string) (*dto.WeekScheduleResponse, error)
	CheckConflicts(ctx context.Context, req *dto.CheckConflictRequest) (*dto.CheckConflictResponse, error)
	// ImportICS 将 iCalendar 内容导入为课程与周期性安排
	ImportICS(ctx context.Context, reader io.Reader, callerID string) (*dto.ImportICSResponse, error)
	// ExportICS 导出指定日期范围的课表为 iCalendar 文本
	ExportICS(ctx context.Context, req *dto.ExportICSRequest) ([]byte, string, error)
	// ExportWeekExcel 导出指定日期所在周的课表为 Excel
	ExportWeekExcel(ctx context.Context, date string) (*bytes.Buffer, string, error)
}

type timetableService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(cfg *config.Config, repo *repository.Repository, cache *redis.Client, logger *zap.Logger) TimetableService {
	return &timetableService{cfg: cfg, repo: repo, cache: cache, logger: logger}
}

// ────────────────────── GetDay ──────────────────────

func (s *timetableService) GetDay(ctx context.Context, date string) (*dto.DayScheduleResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrTimetableDateInvalid
	}

	// 缓存命中直接返回；Redis 不可用时退化为每次重算
	var version int64 = -1
	if s.cache != nil {
		if v, err := s.cache.DataVersion(ctx); err == nil {
			version = v
			if data, err := s.cache.GetDaySchedule(ctx, version, date); err == nil && data != nil {
				var resp dto.DayScheduleResponse
				if json.Unmarshal(data, &resp) == nil {
					return &resp, nil
				}
			}
		} else {
			s.logger.Warn("读取缓存版本失败", zap.Error(err))
		}
	}

	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	resp, err := s.resolveDay(snap, day)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && version >= 0 {
		if data, err := json.Marshal(resp); err == nil {
			_ = s.cache.SetDaySchedule(ctx, version, date, data, s.cfg.Schedule.DayCacheTTL)
		}
	}
	return resp, nil
}

// ────────────────────── GetWeek ──────────────────────

// GetWeek 返回 date 所在周（周一至周日）的完整课表。整周查询
// 直接基于快照解析，不走单日缓存，避免七次版本往返。
func (s *timetableService) GetWeek(ctx context.Context, date string) (*dto.WeekScheduleResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrTimetableDateInvalid
	}

	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	monday := schedule.Midnight(day).AddDate(0, 0, -(schedule.WeekdayOf(day) - 1))
	resp := &dto.WeekScheduleResponse{
		WeekStart: monday.Format("2006-01-02"),
		Days:      make([]dto.DayScheduleResponse, 0, 7),
	}
	for i := 0; i < 7; i++ {
		dayResp, err := s.resolveDay(snap, monday.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		resp.Days = append(resp.Days, *dayResp)
	}
	return resp, nil
}

// ────────────────────── CheckConflicts ──────────────────────

func (s *timetableService) CheckConflicts(ctx context.Context, req *dto.CheckConflictRequest) (*dto.CheckConflictResponse, error) {
	cand := schedule.Candidate{
		CourseID:  req.CourseID,
		Interval:  schedule.TimeInterval{Start: req.StartTime, End: req.EndTime},
		DayOfWeek: req.DayOfWeek,
		WeekType:  req.WeekType,
	}
	if req.ExcludeID != "" {
		cand.ExcludeIDs = []string{req.ExcludeID}
	}

	// 课程已存在时沿用其教师/地点，否则候选不携带共享资源
	if req.CourseID != "" {
		if course, err := s.repo.Course.GetByID(ctx, req.CourseID); err == nil {
			cand.Instructor = course.Instructor
			cand.Location = course.Location
		}
	}

	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, ErrTimetableDateInvalid
		}
		cand.Date = &d
	} else {
		from, err := time.Parse("2006-01-02", req.ValidFrom)
		if err != nil {
			return nil, ErrTimetableDateInvalid
		}
		to, err := time.Parse("2006-01-02", req.ValidTo)
		if err != nil {
			return nil, ErrTimetableDateInvalid
		}
		cand.ValidFrom = from
		cand.ValidTo = to
	}

	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	resolver := schedule.NewResolver(snap, s.cfg.Schedule.ConflictScanWeeks)
	conflicts, err := resolver.CheckConflicts(cand)
	if err != nil {
		if errors.Is(err, schedule.ErrValidation) || errors.Is(err, schedule.ErrInvalidRange) {
			return nil, ErrTimetableRangeInvalid
		}
		s.logger.Error("冲突检测失败", zap.Error(err))
		return nil, err
	}

	if conflicts == nil {
		conflicts = []schedule.ConflictReport{}
	}
	return &dto.CheckConflictResponse{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

// ────────────────────── ImportICS ──────────────────────

// ImportICS 把 ICS 内容转为课程与周期性安排并落盘。
// 每个合并后的条目生成一门课程和一条安排，有效期取条目的首末发生日期，
// week_type 按发生日期相对激活学期锚点的奇偶分布推导。
func (s *timetableService) ImportICS(ctx context.Context, reader io.Reader, callerID string) (*dto.ImportICSResponse, error) {
	entries, err := parseICSEntries(reader)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrImportNoEvents
	}

	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		return nil, ErrNoActiveTerm
	}

	resp := &dto.ImportICSResponse{}
	var plans []model.RecurringPlan
	for _, e := range entries {
		course := &model.Course{
			Name:      e.Name,
			Location:  e.Location,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		}
		course.CreatedBy = &callerID
		course.UpdatedBy = &callerID
		if err := s.repo.Course.Create(ctx, course); err != nil {
			s.logger.Error("导入课程失败", zap.String("name", e.Name), zap.Error(err))
			return nil, err
		}
		resp.ImportedCourses++

		plan := model.RecurringPlan{
			CourseID:  course.CourseID,
			DayOfWeek: e.DayOfWeek,
			WeekType:  e.WeekType(term.AnchorDate),
			ValidFrom: e.FirstDate(),
			ValidTo:   e.LastDate(),
		}
		plan.CreatedBy = &callerID
		plan.UpdatedBy = &callerID
		plans = append(plans, plan)
	}

	if err := s.repo.Plan.BatchCreate(ctx, plans); err != nil {
		s.logger.Error("导入安排失败", zap.Error(err))
		return nil, err
	}
	resp.ImportedPlans = len(plans)

	bumpVersion(ctx, s.cache)
	return resp, nil
}

// ────────────────────── ExportICS ──────────────────────

func (s *timetableService) ExportICS(ctx context.Context, req *dto.ExportICSRequest) ([]byte, string, error) {
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return nil, "", ErrTimetableDateInvalid
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return nil, "", ErrTimetableDateInvalid
	}
	if to.Before(from) || int(to.Sub(from).Hours()/24) > exportRangeMaxDays {
		return nil, "", ErrTimetableRangeInvalid
	}

	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		return nil, "", err
	}
	resolver := schedule.NewResolver(snap, s.cfg.Schedule.ConflictScanWeeks)

	loc, _ := time.LoadLocation(localTimezone)
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//TimeNest//Timetable//CN")

	now := time.Now()
	for day := schedule.Midnight(from); !day.After(schedule.Midnight(to)); day = day.AddDate(0, 0, 1) {
		occurrences, err := resolver.ResolveForDate(day)
		if err != nil {
			s.logger.Error("解析课表失败", zap.Time("date", day), zap.Error(err))
			return nil, "", ErrTimetableResolveFail
		}
		for _, occ := range occurrences {
			uid := fmt.Sprintf("%s-%s@timenest", occ.SourceID, day.Format("20060102"))
			evt := cal.AddEvent(uid)
			evt.SetCreatedTime(now)
			evt.SetDtStampTime(now)
			evt.SetSummary(occ.CourseName)
			if occ.Location != "" {
				evt.SetLocation(occ.Location)
			}
			if occ.Instructor != "" {
				evt.SetDescription(occ.Instructor)
			}
			evt.SetStartAt(combineDateTime(day, occ.Interval.Start, loc))
			evt.SetEndAt(combineDateTime(day, occ.Interval.End, loc))
		}
	}

	filename := fmt.Sprintf("timetable_%s_%s.ics", req.From, req.To)
	return []byte(cal.Serialize()), filename, nil
}

// ────────────────────── ExportWeekExcel ──────────────────────

// ExportWeekExcel 导出 date 所在周的课表。
// 格式：列为周一至周日，行为当周出现过的时间段，单元格为课程名（地点）。
func (s *timetableService) ExportWeekExcel(ctx context.Context, date string) (*bytes.Buffer, string, error) {
	week, err := s.GetWeek(ctx, date)
	if err != nil {
		return nil, "", err
	}

	// 收集唯一时间段并建立 时间段×星期 索引
	type slotKey struct{ start, end string }
	var slots []slotKey
	slotSeen := make(map[slotKey]bool)
	cellIndex := make(map[string]string) // "start-end:dow" → 单元格文本

	for _, day := range week.Days {
		for _, occ := range day.Occurrences {
			k := slotKey{start: occ.Interval.Start, end: occ.Interval.End}
			if !slotSeen[k] {
				slotSeen[k] = true
				slots = append(slots, k)
			}
			text := occ.CourseName
			if occ.Location != "" {
				text += " (" + occ.Location + ")"
			}
			idx := fmt.Sprintf("%s-%s:%d", k.start, k.end, day.DayOfWeek)
			if existing, ok := cellIndex[idx]; ok {
				// 同一槽位多条发生（巧合重叠）逐条罗列
				cellIndex[idx] = existing + "\n" + text
			} else {
				cellIndex[idx] = text
			}
		}
	}
	// "HH:MM" 字典序即时间序
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].start != slots[j].start {
			return slots[i].start < slots[j].start
		}
		return slots[i].end < slots[j].end
	})

	dayNames := []string{"", "周一", "周二", "周三", "周四", "周五", "周六", "周日"}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	for i := 1; i <= 7; i++ {
		col, _ := excelize.ColumnNumberToName(1 + i)
		f.SetColWidth(sheetName, col, col, 20)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("课表 — %s 起", week.WeekStart))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "时间")
	for i := 1; i <= 7; i++ {
		col, _ := excelize.ColumnNumberToName(1 + i)
		f.SetCellValue(sheetName, col+"2", dayNames[i])
	}

	// 数据行
	row := 3
	for _, slot := range slots {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s-%s", slot.start, slot.end))
		for dow := 1; dow <= 7; dow++ {
			col, _ := excelize.ColumnNumberToName(1 + dow)
			key := fmt.Sprintf("%s-%s:%d", slot.start, slot.end, dow)
			if text, ok := cellIndex[key]; ok {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), text)
			} else {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), "-")
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%s.xlsx", week.WeekStart)
	return buf, filename, nil
}

// ────────────────────── 辅助函数 ──────────────────────

// resolveDay 以给定快照解析单日课表
func (s *timetableService) resolveDay(snap *schedule.Snapshot, day time.Time) (*dto.DayScheduleResponse, error) {
	resolver := schedule.NewResolver(snap, s.cfg.Schedule.ConflictScanWeeks)
	occurrences, err := resolver.ResolveForDate(day)
	if err != nil {
		s.logger.Error("解析课表失败", zap.Time("date", day), zap.Error(err))
		return nil, ErrTimetableResolveFail
	}
	if occurrences == nil {
		occurrences = []schedule.Occurrence{}
	}
	return &dto.DayScheduleResponse{
		Date:        schedule.Midnight(day).Format("2006-01-02"),
		DayOfWeek:   schedule.WeekdayOf(day),
		WeekParity:  string(schedule.WeekParityOf(day, snap.Anchor())),
		Occurrences: occurrences,
	}, nil
}

// combineDateTime 组合日期与 "HH:MM" 时刻
func combineDateTime(day time.Time, hhmm string, loc *time.Location) time.Time {
	t, _ := time.Parse("15:04", hhmm)
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

