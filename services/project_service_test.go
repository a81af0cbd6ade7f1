package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"structura-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestPlanBackReferencesMovesSupervisor(t *testing.T) {
	changes := PlanBackReferences(10, uintPtr(1), uintPtr(2), uintPtr(5), uintPtr(5))

	assert.Equal(t, []BackReferenceChange{
		{Kind: HolderSupervisor, HolderID: 1},
		{Kind: HolderSupervisor, HolderID: 2, ProjectID: uintPtr(10)},
	}, changes)
}

func TestPlanBackReferencesKindsAreIndependent(t *testing.T) {
	changes := PlanBackReferences(3, nil, nil, nil, uintPtr(8))

	require.Len(t, changes, 1)
	assert.Equal(t, HolderClient, changes[0].Kind)
	assert.Equal(t, uint(8), changes[0].HolderID)
	require.NotNil(t, changes[0].ProjectID)
	assert.Equal(t, uint(3), *changes[0].ProjectID)
}

func TestPlanBackReferencesClearsRemovedHolder(t *testing.T) {
	changes := PlanBackReferences(4, uintPtr(6), nil, nil, nil)

	assert.Equal(t, []BackReferenceChange{{Kind: HolderSupervisor, HolderID: 6}}, changes)
}

func TestPlanBackReferencesNoChange(t *testing.T) {
	assert.Empty(t, PlanBackReferences(1, uintPtr(2), uintPtr(2), nil, nil))
}

type recordedWrite struct {
	op        string
	kind      string
	holderID  uint
	projectID *uint
}

type fakeBackReferenceWriter struct {
	writes  []recordedWrite
	failSet uint
}

func (w *fakeBackReferenceWriter) SetProject(kind string, holderID uint, projectID *uint) error {
	if w.failSet != 0 && holderID == w.failSet {
		return errors.New("write refused")
	}
	w.writes = append(w.writes, recordedWrite{op: "set", kind: kind, holderID: holderID, projectID: projectID})
	return nil
}

func (w *fakeBackReferenceWriter) DetachFromOtherProjects(kind string, holderID, projectID uint) error {
	pid := projectID
	w.writes = append(w.writes, recordedWrite{op: "detach", kind: kind, holderID: holderID, projectID: &pid})
	return nil
}

func TestApplyBackReferencesDetachesBeforeLinking(t *testing.T) {
	w := &fakeBackReferenceWriter{}
	changes := PlanBackReferences(10, uintPtr(1), uintPtr(2), nil, nil)

	require.NoError(t, applyBackReferences(w, changes))
	assert.Equal(t, []recordedWrite{
		{op: "set", kind: HolderSupervisor, holderID: 1},
		{op: "detach", kind: HolderSupervisor, holderID: 2, projectID: uintPtr(10)},
		{op: "set", kind: HolderSupervisor, holderID: 2, projectID: uintPtr(10)},
	}, w.writes)
}

func TestApplyBackReferencesStopsAtFirstError(t *testing.T) {
	w := &fakeBackReferenceWriter{failSet: 1}
	changes := PlanBackReferences(10, uintPtr(1), uintPtr(2), nil, nil)

	err := applyBackReferences(w, changes)
	require.EqualError(t, err, "update supervisor 1: write refused")
	assert.Empty(t, w.writes)
}

func TestProjectCreateRequiresOwner(t *testing.T) {
	gormDB, state := newScriptedGormDB(t, nil)

	err := NewProjectService(gormDB).Create(context.Background(), &models.Project{ProjectName: "Depot"})
	require.ErrorIs(t, err, ErrValidation)
	require.NoError(t, state.verifyComplete())
	assert.Equal(t, 0, state.commits)
}

// projectUpdatePrelude scripts the reads and the row save that precede back-reference writes
// when project 10 moves from supervisor 1 to supervisor 2.
func projectUpdatePrelude() []*queryStep {
	return []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("^SELECT \\* FROM `projects` WHERE project_id = \\? .*FOR UPDATE$"),
			anyArgs: true,
			columns: []string{"project_id", "user_id", "supervisor_id", "client_id", "project_name", "created_at"},
			rows:    [][]driver.Value{{int64(10), int64(7), int64(1), nil, "Depot", createdAt}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("^SELECT count\\(\\*\\) FROM `supervisors` WHERE supervisor_id = \\?"),
			args:    []driver.Value{int64(2)},
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("^UPDATE `projects` SET `user_id`=\\?"),
			anyArgs: true,
			result:  scriptedResult{rowsAffected: 1},
		},
	}
}

func TestProjectUpdateMovesSupervisorInOneTransaction(t *testing.T) {
	steps := append(projectUpdatePrelude(),
		// Supervisor 1 is cleared.
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("^UPDATE `supervisors` SET `project_id`=\\? WHERE supervisor_id = \\?$"),
			args:    []driver.Value{nil, int64(1)},
		},
		// Supervisor 2 leaves any other project, then points at 10.
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("^UPDATE `projects` SET `supervisor_id`=\\? WHERE supervisor_id = \\? AND project_id <> \\?$"),
			args:    []driver.Value{nil, int64(2), int64(10)},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("^UPDATE `supervisors` SET `project_id`=\\? WHERE supervisor_id = \\?$"),
			args:    []driver.Value{int64(10), int64(2)},
		},
	)
	gormDB, state := newScriptedGormDB(t, steps)

	project := &models.Project{ProjectID: 10, ProjectName: "Depot", SupervisorID: uintPtr(2), Status: "Ongoing"}
	require.NoError(t, NewProjectService(gormDB).Update(context.Background(), project))

	require.NoError(t, state.verifyComplete())
	assert.Equal(t, 1, state.commits)
	assert.Equal(t, 0, state.rollbacks)
	require.NotNil(t, project.UserID)
	assert.Equal(t, uint(7), *project.UserID)
	assert.Equal(t, createdAt, project.CreatedAt)
}

func TestProjectUpdateRollsBackWhenBackReferenceFails(t *testing.T) {
	steps := append(projectUpdatePrelude(), &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("^UPDATE `supervisors` SET `project_id`=\\? WHERE supervisor_id = \\?$"),
		args:    []driver.Value{nil, int64(1)},
		err:     errors.New("lock wait timeout exceeded"),
	})
	gormDB, state := newScriptedGormDB(t, steps)

	project := &models.Project{ProjectID: 10, ProjectName: "Depot", SupervisorID: uintPtr(2)}
	err := NewProjectService(gormDB).Update(context.Background(), project)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update supervisor 1")
	assert.Contains(t, err.Error(), "lock wait timeout exceeded")

	// Nothing after the failed write ran, and nothing was committed.
	require.NoError(t, state.verifyComplete())
	assert.Equal(t, 0, state.commits)
	assert.Equal(t, 1, state.rollbacks)
}

func TestProjectUpdateRejectsUnknownSupervisor(t *testing.T) {
	steps := projectUpdatePrelude()[:2]
	steps[1].rows = [][]driver.Value{{int64(0)}}
	gormDB, state := newScriptedGormDB(t, steps)

	err := NewProjectService(gormDB).Update(context.Background(), &models.Project{ProjectID: 10, SupervisorID: uintPtr(2)})
	require.ErrorIs(t, err, ErrValidation)
	require.NoError(t, state.verifyComplete())
	assert.Equal(t, 0, state.commits)
	assert.Equal(t, 1, state.rollbacks)
}
