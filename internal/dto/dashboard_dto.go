package dto

// StudentDashboardResponse summarizes a student's standing across their
// active enrollments.
type StudentDashboardResponse struct {
	StudentID          uint     `json:"student_id"`
	EnrolledCourses    int      `json:"enrolled_courses"`
	TotalAssignments   int      `json:"total_assignments"`
	DraftSubmissions   int      `json:"draft_submissions"`
	PendingGrading     int      `json:"pending_grading"`
	GradedSubmissions  int      `json:"graded_submissions"`
	AveragePercentage  *float64 `json:"average_percentage"`
	PassingSubmissions int      `json:"passing_submissions"`
	OverdueWithoutWork int      `json:"overdue_without_work"`
}
