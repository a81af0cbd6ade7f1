package services

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"structura-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) *time.Time {
	t := time.Date(2025, 5, 2, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestValidatePunches(t *testing.T) {
	day := models.NewDate(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		name    string
		a       models.Attendance
		wantErr bool
	}{
		{name: "date required", a: models.Attendance{}, wantErr: true},
		{name: "absent day", a: models.Attendance{AttendanceDate: day}},
		{name: "full day", a: models.Attendance{AttendanceDate: day, CheckInTime: at(7, 0), BreakOutTime: at(12, 0), BreakInTime: at(13, 0), CheckOutTime: at(17, 0)}},
		{name: "check out before check in", a: models.Attendance{AttendanceDate: day, CheckInTime: at(8, 0), CheckOutTime: at(7, 59)}, wantErr: true},
		{name: "break back before it started", a: models.Attendance{AttendanceDate: day, CheckInTime: at(8, 0), BreakOutTime: at(12, 0), BreakInTime: at(11, 0)}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePunches(&tc.a)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDeleteAttendanceMissingIsNotFound(t *testing.T) {
	gormDB, state := newScriptedGormDB(t, []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("DELETE FROM `attendance` WHERE attendance_id = \\?"),
			args:    []driver.Value{int64(12)},
			result:  scriptedResult{},
		},
	})

	err := NewAttendanceService(gormDB).Delete(context.Background(), 12)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, state.verifyComplete())
}

func TestCreateAttendanceRejectsInvalidPunchesWithoutQuerying(t *testing.T) {
	gormDB, state := newScriptedGormDB(t, nil)
	a := &models.Attendance{FieldWorkerID: 1, ProjectID: 1}

	err := NewAttendanceService(gormDB).Create(context.Background(), a)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, state.commits)
}
