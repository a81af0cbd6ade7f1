package services

import (
	"context"
	"time"

	"structura-api/models"

	"gorm.io/gorm"
)

// GormDashboardRepository implements DashboardRepository with grouped SQL queries.
type GormDashboardRepository struct {
	db *gorm.DB
}

func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// managerSubtasks scopes subtasks to the projects owned by a manager.
func (r *GormDashboardRepository) managerSubtasks(ctx context.Context, managerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("subtasks AS s").
		Joins("JOIN phases ph ON ph.phase_id = s.phase_id").
		Joins("JOIN projects p ON p.project_id = ph.project_id").
		Where("p.user_id = ?", managerID)
}

func (r *GormDashboardRepository) CountProjects(ctx context.Context, managerID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("user_id = ?", managerID).
		Count(&total).Error
	return total, err
}

func (r *GormDashboardRepository) RecentProjects(ctx context.Context, managerID uint, limit int) ([]ProjectProgressRow, error) {
	var rows []ProjectProgressRow
	err := r.db.WithContext(ctx).
		Table("projects AS p").
		Select(`p.project_id, p.project_name, p.street, p.created_at,
			b.name AS barangay_name, c.name AS city_name, pr.name AS province_name,
			COUNT(DISTINCT s.subtask_id) AS total_subtasks,
			COUNT(DISTINCT CASE WHEN s.status = ? THEN s.subtask_id END) AS completed_subtasks`,
			models.SubtaskCompleted).
		Joins("LEFT JOIN barangays b ON b.id = p.barangay_id").
		Joins("LEFT JOIN cities c ON c.id = p.city_id").
		Joins("LEFT JOIN provinces pr ON pr.id = p.province_id").
		Joins("LEFT JOIN phases ph ON ph.project_id = p.project_id").
		Joins("LEFT JOIN subtasks s ON s.phase_id = ph.phase_id").
		Where("p.user_id = ?", managerID).
		Group("p.project_id, p.project_name, p.street, p.created_at, b.name, c.name, pr.name").
		Order("p.created_at DESC, p.project_id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormDashboardRepository) SubtaskStatusCounts(ctx context.Context, managerID uint) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.managerSubtasks(ctx, managerID).
		Select("s.status AS status, COUNT(*) AS count").
		Group("s.status").
		Scan(&rows).Error
	return rows, err
}

func (r *GormDashboardRepository) CountAssignedSubtasks(ctx context.Context, managerID uint) (int64, error) {
	var total int64
	err := r.managerSubtasks(ctx, managerID).
		Joins("JOIN subtask_field_workers sfw ON sfw.subtask_id = s.subtask_id").
		Select("COUNT(DISTINCT s.subtask_id)").
		Scan(&total).Error
	return total, err
}

func (r *GormDashboardRepository) CompletedSubtaskUpdates(ctx context.Context, managerID uint, since time.Time) ([]time.Time, error) {
	var updates []time.Time
	err := r.managerSubtasks(ctx, managerID).
		Where("s.status = ? AND s.updated_at >= ?", models.SubtaskCompleted, since).
		Pluck("s.updated_at", &updates).Error
	return updates, err
}

func (r *GormDashboardRepository) CountSupervisors(ctx context.Context, managerID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("supervisors AS sv").
		Joins("JOIN projects p ON p.project_id = sv.project_id").
		Where("p.user_id = ?", managerID).
		Count(&total).Error
	return total, err
}

func (r *GormDashboardRepository) FieldWorkerRoleCounts(ctx context.Context, managerID uint) ([]RoleCount, error) {
	var rows []RoleCount
	err := r.db.WithContext(ctx).
		Table("field_workers AS fw").
		Joins("JOIN projects p ON p.project_id = fw.project_id").
		Where("p.user_id = ?", managerID).
		Select("fw.role AS role, COUNT(*) AS count").
		Group("fw.role").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormDashboardRepository) CountOpenSubtasks(ctx context.Context, managerID uint) (int64, error) {
	var total int64
	err := r.managerSubtasks(ctx, managerID).
		Where("s.status <> ?", models.SubtaskCompleted).
		Count(&total).Error
	return total, err
}

func (r *GormDashboardRepository) RecentOpenSubtasks(ctx context.Context, managerID uint, limit int) ([]OpenSubtaskRow, error) {
	var rows []OpenSubtaskRow
	err := r.managerSubtasks(ctx, managerID).
		Select("s.subtask_id, s.title, s.status, s.updated_at, p.project_id, p.project_name").
		Where("s.status <> ?", models.SubtaskCompleted).
		Order("s.updated_at DESC, s.subtask_id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormDashboardRepository) AssignedWorkers(ctx context.Context, subtaskIDs []uint) ([]AssignedWorkerRow, error) {
	if len(subtaskIDs) == 0 {
		return nil, nil
	}
	var rows []AssignedWorkerRow
	err := r.db.WithContext(ctx).
		Table("subtask_field_workers AS sfw").
		Joins("JOIN field_workers fw ON fw.fieldworker_id = sfw.field_worker_id").
		Select("sfw.assignment_id, sfw.subtask_id, fw.fieldworker_id AS field_worker_id, fw.first_name, fw.last_name, fw.role").
		Where("sfw.subtask_id IN ?", subtaskIDs).
		Order("sfw.assignment_id ASC").
		Scan(&rows).Error
	return rows, err
}
