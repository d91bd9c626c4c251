package handler

import "timenest/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Course    *CourseHandler
	Plan      *PlanHandler
	Cycle     *CycleHandler
	Override  *OverrideHandler
	Term      *TermHandler
	Timetable *TimetableHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Course:    NewCourseHandler(svc.Course),
		Plan:      NewPlanHandler(svc.Plan),
		Cycle:     NewCycleHandler(svc.Cycle),
		Override:  NewOverrideHandler(svc.Override),
		Term:      NewTermHandler(svc.Term),
		Timetable: NewTimetableHandler(svc.Timetable),
	}
}
