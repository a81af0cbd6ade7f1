package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"structura-api/config"
	"structura-api/models"

	"gorm.io/gorm"
)

const (
	dashboardRecentProjects = 3
	dashboardActivityDays   = 7
	dashboardOpenItems      = 20
	dashboardTasksToday     = 5
)

// ProjectProgressRow is one project with its location names and subtask counters.
type ProjectProgressRow struct {
	ProjectID         uint      `gorm:"column:project_id"`
	ProjectName       string    `gorm:"column:project_name"`
	Street            *string   `gorm:"column:street"`
	BarangayName      *string   `gorm:"column:barangay_name"`
	CityName          *string   `gorm:"column:city_name"`
	ProvinceName      *string   `gorm:"column:province_name"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	TotalSubtasks     int64     `gorm:"column:total_subtasks"`
	CompletedSubtasks int64     `gorm:"column:completed_subtasks"`
}

// StatusCount is a subtask status with its number of rows.
type StatusCount struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
}

// RoleCount is a field worker role tag with its headcount.
type RoleCount struct {
	Role  string `gorm:"column:role" json:"role"`
	Count int64  `gorm:"column:count" json:"count"`
}

// OpenSubtaskRow is a non-completed subtask with its parent project.
type OpenSubtaskRow struct {
	SubtaskID   uint      `gorm:"column:subtask_id"`
	Title       string    `gorm:"column:title"`
	Status      string    `gorm:"column:status"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	ProjectID   uint      `gorm:"column:project_id"`
	ProjectName string    `gorm:"column:project_name"`
}

// AssignedWorkerRow links an assignment to the worker it names.
type AssignedWorkerRow struct {
	AssignmentID  uint   `gorm:"column:assignment_id"`
	SubtaskID     uint   `gorm:"column:subtask_id"`
	FieldWorkerID uint   `gorm:"column:field_worker_id"`
	FirstName     string `gorm:"column:first_name"`
	LastName      string `gorm:"column:last_name"`
	Role          string `gorm:"column:role"`
}

// DashboardRepository reads the rows the manager dashboard is built from.
type DashboardRepository interface {
	CountProjects(ctx context.Context, managerID uint) (int64, error)
	RecentProjects(ctx context.Context, managerID uint, limit int) ([]ProjectProgressRow, error)
	SubtaskStatusCounts(ctx context.Context, managerID uint) ([]StatusCount, error)
	CountAssignedSubtasks(ctx context.Context, managerID uint) (int64, error)
	CompletedSubtaskUpdates(ctx context.Context, managerID uint, since time.Time) ([]time.Time, error)
	CountSupervisors(ctx context.Context, managerID uint) (int64, error)
	FieldWorkerRoleCounts(ctx context.Context, managerID uint) ([]RoleCount, error)
	CountOpenSubtasks(ctx context.Context, managerID uint) (int64, error)
	RecentOpenSubtasks(ctx context.Context, managerID uint, limit int) ([]OpenSubtaskRow, error)
	AssignedWorkers(ctx context.Context, subtaskIDs []uint) ([]AssignedWorkerRow, error)
}

// DashboardSummary is the project manager dashboard payload.
type DashboardSummary struct {
	Success       bool                   `json:"success"`
	Projects      DashboardProjects      `json:"projects"`
	Tasks         DashboardTasks         `json:"tasks"`
	Activity      DashboardActivity      `json:"activity"`
	Workers       DashboardWorkers       `json:"workers"`
	TasksToday    []DashboardOpenItem    `json:"tasks_today"`
	Notifications DashboardNotifications `json:"notifications"`
}

type DashboardProjects struct {
	Total  int64                    `json:"total"`
	Recent []DashboardRecentProject `json:"recent"`
}

type DashboardRecentProject struct {
	ProjectID      uint       `json:"project_id"`
	ProjectName    string     `json:"project_name"`
	Location       string     `json:"location"`
	Progress       float64    `json:"progress"`
	TasksCompleted int64      `json:"tasks_completed"`
	TotalTasks     int64      `json:"total_tasks"`
	CreatedAt      *time.Time `json:"created_at"`
}

type DashboardTasks struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	InProgress     int64   `json:"in_progress"`
	Pending        int64   `json:"pending"`
	Assigned       int64   `json:"assigned"`
	CompletionRate float64 `json:"completion_rate"`
}

type DashboardActivity struct {
	StartDay string             `json:"start_day"`
	EndDay   string             `json:"end_day"`
	Series   []DashboardDayStat `json:"series"`
}

type DashboardDayStat struct {
	Day       string `json:"day"`
	Completed int64  `json:"completed"`
}

type DashboardWorkers struct {
	Supervisors       int64         `json:"supervisors"`
	FieldWorkersTotal int64         `json:"field_workers_total"`
	ByRole            RoleBreakdown `json:"by_role"`
}

type DashboardNotifications struct {
	Count int64               `json:"count"`
	Items []DashboardOpenItem `json:"items"`
}

type DashboardOpenItem struct {
	SubtaskID       uint                      `json:"subtask_id"`
	Title           string                    `json:"title"`
	Status          string                    `json:"status"`
	ProjectID       *uint                     `json:"project_id"`
	ProjectName     *string                   `json:"project_name"`
	UpdatedAt       *time.Time                `json:"updated_at"`
	AssignedWorkers []DashboardAssignedWorker `json:"assigned_workers"`
}

type DashboardAssignedWorker struct {
	AssignmentID  uint   `json:"assignment_id"`
	FieldWorkerID uint   `json:"fieldworker_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Role          string `json:"role"`
}

// RoleBreakdown keeps role counts in display order (count descending) and
// serialises as a JSON object that preserves that order.
type RoleBreakdown []RoleCount

func (b RoleBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rc := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rc.Role)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", rc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the count for role, or 0.
func (b RoleBreakdown) Get(role string) int64 {
	for _, rc := range b {
		if rc.Role == role {
			return rc.Count
		}
	}
	return 0
}

// DashboardService builds the project manager summary.
type DashboardService struct {
	repo     DashboardRepository
	now      func() time.Time
	location *time.Location
}

// NewDashboardService instantiates the service over gorm.
func NewDashboardService(db *gorm.DB) *DashboardService {
	if db == nil {
		db = config.DB
	}
	return NewDashboardServiceWithRepository(NewGormDashboardRepository(db))
}

// NewDashboardServiceWithRepository builds the service over any repository.
func NewDashboardServiceWithRepository(repo DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now, location: time.Local}
}

// WithClock overrides the clock and the timezone used to bucket activity days.
func (s *DashboardService) WithClock(now func() time.Time, loc *time.Location) *DashboardService {
	s.now = now
	if loc != nil {
		s.location = loc
	}
	return s
}

// Summary computes every dashboard section for a manager. Unknown managers yield empty sections.
func (s *DashboardService) Summary(ctx context.Context, managerID uint) (*DashboardSummary, error) {
	summary := &DashboardSummary{Success: true}

	projects, err := s.projects(ctx, managerID)
	if err != nil {
		return nil, err
	}
	summary.Projects = projects

	tasks, err := s.tasks(ctx, managerID)
	if err != nil {
		return nil, err
	}
	summary.Tasks = tasks

	activity, err := s.activity(ctx, managerID)
	if err != nil {
		return nil, err
	}
	summary.Activity = activity

	workers, err := s.workers(ctx, managerID)
	if err != nil {
		return nil, err
	}
	summary.Workers = workers

	notifications, err := s.notifications(ctx, managerID)
	if err != nil {
		return nil, err
	}
	summary.Notifications = notifications

	todayCount := len(notifications.Items)
	if todayCount > dashboardTasksToday {
		todayCount = dashboardTasksToday
	}
	summary.TasksToday = notifications.Items[:todayCount]

	return summary, nil
}

// EmptySummary is the payload for a manager that cannot own anything. It reads nothing.
func (s *DashboardService) EmptySummary() *DashboardSummary {
	today := models.NewDate(s.now().In(s.location))
	start := today.AddDate(0, 0, -(dashboardActivityDays - 1))
	return &DashboardSummary{
		Success:  true,
		Projects: DashboardProjects{Recent: []DashboardRecentProject{}},
		Activity: DashboardActivity{
			StartDay: start.Format(models.DateLayout),
			EndDay:   today.Format(models.DateLayout),
			Series:   BuildActivitySeries(nil, today.Time, dashboardActivityDays, s.location),
		},
		Workers:       DashboardWorkers{ByRole: RoleBreakdown{}},
		TasksToday:    []DashboardOpenItem{},
		Notifications: DashboardNotifications{Items: []DashboardOpenItem{}},
	}
}

func (s *DashboardService) projects(ctx context.Context, managerID uint) (DashboardProjects, error) {
	out := DashboardProjects{Recent: []DashboardRecentProject{}}

	total, err := s.repo.CountProjects(ctx, managerID)
	if err != nil {
		return out, fmt.Errorf("count projects: %w", err)
	}
	out.Total = total

	rows, err := s.repo.RecentProjects(ctx, managerID, dashboardRecentProjects)
	if err != nil {
		return out, fmt.Errorf("recent projects: %w", err)
	}
	for _, row := range rows {
		created := row.CreatedAt
		item := DashboardRecentProject{
			ProjectID:      row.ProjectID,
			ProjectName:    row.ProjectName,
			Location:       BuildLocation(row.Street, row.BarangayName, row.CityName, row.ProvinceName),
			Progress:       Ratio(row.CompletedSubtasks, row.TotalSubtasks),
			TasksCompleted: row.CompletedSubtasks,
			TotalTasks:     row.TotalSubtasks,
		}
		if !created.IsZero() {
			item.CreatedAt = &created
		}
		out.Recent = append(out.Recent, item)
	}
	return out, nil
}

func (s *DashboardService) tasks(ctx context.Context, managerID uint) (DashboardTasks, error) {
	var out DashboardTasks

	counts, err := s.repo.SubtaskStatusCounts(ctx, managerID)
	if err != nil {
		return out, fmt.Errorf("subtask status counts: %w", err)
	}
	for _, sc := range counts {
		out.Total += sc.Count
		switch sc.Status {
		case models.SubtaskCompleted:
			out.Completed += sc.Count
		case models.SubtaskInProgress:
			out.InProgress += sc.Count
		case models.SubtaskPending:
			out.Pending += sc.Count
		}
	}

	assigned, err := s.repo.CountAssignedSubtasks(ctx, managerID)
	if err != nil {
		return out, fmt.Errorf("count assigned subtasks: %w", err)
	}
	out.Assigned = assigned
	out.CompletionRate = Ratio(out.Completed, out.Total) * 100.0

	return out, nil
}

func (s *DashboardService) activity(ctx context.Context, managerID uint) (DashboardActivity, error) {
	today := models.NewDate(s.now().In(s.location))
	start := today.AddDate(0, 0, -(dashboardActivityDays - 1))

	updates, err := s.repo.CompletedSubtaskUpdates(ctx, managerID, start)
	if err != nil {
		return DashboardActivity{}, fmt.Errorf("completed subtask updates: %w", err)
	}

	return DashboardActivity{
		StartDay: start.Format(models.DateLayout),
		EndDay:   today.Format(models.DateLayout),
		Series:   BuildActivitySeries(updates, today.Time, dashboardActivityDays, s.location),
	}, nil
}

func (s *DashboardService) workers(ctx context.Context, managerID uint) (DashboardWorkers, error) {
	out := DashboardWorkers{ByRole: RoleBreakdown{}}

	supervisors, err := s.repo.CountSupervisors(ctx, managerID)
	if err != nil {
		return out, fmt.Errorf("count supervisors: %w", err)
	}
	out.Supervisors = supervisors

	roles, err := s.repo.FieldWorkerRoleCounts(ctx, managerID)
	if err != nil {
		return out, fmt.Errorf("field worker roles: %w", err)
	}
	for _, rc := range roles {
		out.FieldWorkersTotal += rc.Count
	}
	out.ByRole = SortRoleCounts(roles)

	return out, nil
}

func (s *DashboardService) notifications(ctx context.Context, managerID uint) (DashboardNotifications, error) {
	out := DashboardNotifications{Items: []DashboardOpenItem{}}

	count, err := s.repo.CountOpenSubtasks(ctx, managerID)
	if err != nil {
		return out, fmt.Errorf("count open subtasks: %w", err)
	}
	out.Count = count

	rows, err := s.repo.RecentOpenSubtasks(ctx, managerID, dashboardOpenItems)
	if err != nil {
		return out, fmt.Errorf("recent open subtasks: %w", err)
	}
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.SubtaskID)
	}
	workerRows, err := s.repo.AssignedWorkers(ctx, ids)
	if err != nil {
		return out, fmt.Errorf("assigned workers: %w", err)
	}
	bySubtask := groupAssignedWorkers(workerRows)

	for _, row := range rows {
		item := DashboardOpenItem{
			SubtaskID:       row.SubtaskID,
			Title:           row.Title,
			Status:          row.Status,
			AssignedWorkers: bySubtask[row.SubtaskID],
		}
		if item.AssignedWorkers == nil {
			item.AssignedWorkers = []DashboardAssignedWorker{}
		}
		if row.ProjectID != 0 {
			projectID, projectName := row.ProjectID, row.ProjectName
			item.ProjectID = &projectID
			item.ProjectName = &projectName
		}
		if !row.UpdatedAt.IsZero() {
			updated := row.UpdatedAt
			item.UpdatedAt = &updated
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// BuildLocation joins street, barangay, city and province, skipping blanks. "N/A" when all are blank.
func BuildLocation(parts ...*string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		if v := strings.TrimSpace(*p); v != "" {
			segments = append(segments, v)
		}
	}
	if len(segments) == 0 {
		return "N/A"
	}
	return strings.Join(segments, ", ")
}

// Ratio returns part/total, or 0 when total is 0.
func Ratio(part, total int64) float64 {
	if total <= 0 {
		return 0.0
	}
	return float64(part) / float64(total)
}

// BuildActivitySeries counts timestamps per local day over the window of days ending at today,
// oldest first. Every day appears even with no matches.
func BuildActivitySeries(updates []time.Time, today time.Time, days int, loc *time.Location) []DashboardDayStat {
	if loc == nil {
		loc = time.Local
	}
	counts := make(map[string]int64, days)
	for _, t := range updates {
		counts[t.In(loc).Format(models.DateLayout)]++
	}

	end := models.NewDate(today.In(loc))
	series := make([]DashboardDayStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := end.AddDate(0, 0, -i).Format(models.DateLayout)
		series = append(series, DashboardDayStat{Day: key, Completed: counts[key]})
	}
	return series
}

// SortRoleCounts orders by count descending, then role name.
func SortRoleCounts(roles []RoleCount) RoleBreakdown {
	out := make(RoleBreakdown, len(roles))
	copy(out, roles)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Role < out[j].Role
	})
	return out
}
