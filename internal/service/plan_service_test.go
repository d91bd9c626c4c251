package service

import (
	"context"
	"errors"
	"testing"

	"timenest/backend/internal/dto"
)

// ── Create 测试 ──

func TestPlanService_Create_Success(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	courseID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")

	resp, err := env.svc.Plan.Create(context.Background(), &dto.CreatePlanRequest{
		CourseID:  courseID,
		DayOfWeek: 1,
		ValidFrom: "2024-09-02",
		ValidTo:   "2025-01-10",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.WeekType != "all" {
		t.Errorf("week_type 缺省应为 all，实际=%s", resp.WeekType)
	}
	if resp.Course == nil || resp.Course.Name != "高等数学" {
		t.Error("响应应携带课程信息")
	}
}

func TestPlanService_Create_CourseNotFound(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)

	_, err := env.svc.Plan.Create(context.Background(), &dto.CreatePlanRequest{
		CourseID:  "missing",
		DayOfWeek: 1,
		ValidFrom: "2024-09-02",
		ValidTo:   "2025-01-10",
	}, "admin-001")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestPlanService_Create_InvalidWindow(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	courseID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")

	_, err := env.svc.Plan.Create(context.Background(), &dto.CreatePlanRequest{
		CourseID:  courseID,
		DayOfWeek: 1,
		ValidFrom: "2025-01-10",
		ValidTo:   "2024-09-02",
	}, "admin-001")
	if !errors.Is(err, ErrPlanDateInvalid) {
		t.Errorf("期望 ErrPlanDateInvalid，实际: %v", err)
	}
}

func TestPlanService_Create_ConflictRejected(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	mathID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")
	env.seedPlan(t, mathID, 2, "all", "2024-09-03", "2024-09-24")

	// 同教师时间重叠
	tutorID := env.seedCourse(t, "数学辅导", "张教授", "D404", "09:00", "10:00")
	_, err := env.svc.Plan.Create(context.Background(), &dto.CreatePlanRequest{
		CourseID:  tutorID,
		DayOfWeek: 2,
		ValidFrom: "2024-09-03",
		ValidTo:   "2024-09-24",
	}, "admin-001")
	if !errors.Is(err, ErrPlanHasConflicts) {
		t.Fatalf("期望 ErrPlanHasConflicts，实际: %v", err)
	}

	// 冲突详情应随错误返回
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatal("错误应为 *ConflictError")
	}
	if len(cerr.Conflicts) == 0 {
		t.Error("冲突列表不应为空")
	}
}

func TestPlanService_Create_ForceBypassesConflict(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	mathID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")
	env.seedPlan(t, mathID, 2, "all", "2024-09-03", "2024-09-24")

	tutorID := env.seedCourse(t, "数学辅导", "张教授", "D404", "09:00", "10:00")
	_, err := env.svc.Plan.Create(context.Background(), &dto.CreatePlanRequest{
		CourseID:  tutorID,
		DayOfWeek: 2,
		ValidFrom: "2024-09-03",
		ValidTo:   "2024-09-24",
		Force:     true,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Force=true 应跳过冲突检测: %v", err)
	}
}

// ── Update 测试 ──

func TestPlanService_Update_NoSelfConflict(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	mathID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")
	planID := env.seedPlan(t, mathID, 2, "all", "2024-09-03", "2024-09-24")

	// 仅延长有效期，新版本与旧版本时间重叠但不应视为冲突
	newTo := "2024-10-22"
	resp, err := env.svc.Plan.Update(context.Background(), planID, &dto.UpdatePlanRequest{
		ValidTo: &newTo,
	}, "admin-001")
	if err != nil {
		t.Fatalf("编辑自身不应判为冲突: %v", err)
	}
	if resp.ValidTo != "2024-10-22" {
		t.Errorf("期望 ValidTo=2024-10-22，实际=%s", resp.ValidTo)
	}
}

func TestPlanService_Update_NotFound(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)

	day := 3
	_, err := env.svc.Plan.Update(context.Background(), "missing", &dto.UpdatePlanRequest{
		DayOfWeek: &day,
	}, "admin-001")
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("期望 ErrPlanNotFound，实际: %v", err)
	}
}

// ── List / Delete 测试 ──

func TestPlanService_List_FilterByCourse(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	mathID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")
	engID := env.seedCourse(t, "大学英语", "李老师", "B202", "10:00", "11:30")
	env.seedPlan(t, mathID, 1, "all", "2024-09-02", "2025-01-10")
	env.seedPlan(t, engID, 3, "all", "2024-09-02", "2025-01-10")

	result, err := env.svc.Plan.List(context.Background(), &dto.PlanListRequest{CourseID: mathID})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望1条，实际=%d", len(result))
	}
	if result[0].CourseID != mathID {
		t.Errorf("过滤结果课程不符: %s", result[0].CourseID)
	}
}

func TestPlanService_Delete(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	mathID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")
	planID := env.seedPlan(t, mathID, 1, "all", "2024-09-02", "2025-01-10")

	if err := env.svc.Plan.Delete(context.Background(), planID, "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := env.svc.Plan.GetByID(context.Background(), planID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("删除后应查不到，实际: %v", err)
	}
}

// ── 课程删除保护 ──

func TestCourseService_Delete_BlockedWhenReferenced(t *testing.T) {
	env := setupTestEnv()
	env.seedActiveTerm(t)
	mathID := env.seedCourse(t, "高等数学", "张教授", "A101", "08:00", "09:30")
	planID := env.seedPlan(t, mathID, 1, "all", "2024-09-02", "2025-01-10")

	if err := env.svc.Course.Delete(context.Background(), mathID, "admin-001"); !errors.Is(err, ErrCourseReferenced) {
		t.Fatalf("被引用课程不应可删除，实际: %v", err)
	}

	// 移除引用后可删除
	if err := env.svc.Plan.Delete(context.Background(), planID, "admin-001"); err != nil {
		t.Fatalf("删除安排失败: %v", err)
	}
	if err := env.svc.Course.Delete(context.Background(), mathID, "admin-001"); err != nil {
		t.Errorf("无引用课程应可删除: %v", err)
	}
}
