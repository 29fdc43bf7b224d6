package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

func attendanceFixture(t *testing.T) (*AttendanceHandler, *fakeAttendanceStore, *fakeStudentStore) {
	t.Helper()
	jamias := &fakeJamiaStore{jamias: map[uint]*model.Jamia{1: activeJamia(1, "alpha")}}
	students := newFakeStudentStore()
	attendance := &fakeAttendanceStore{}
	h := NewAttendanceHandler(attendance, students, testGuard(jamias), testValidate, 24*time.Hour)
	return h, attendance, students
}

func TestMarkAttendance(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return date.Add(30 * time.Hour) }

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, attendance.records, 1)
	assert.Equal(t, model.AttendancePresent, attendance.records[0].Status)
	assert.Equal(t, uint(10), attendance.records[0].MarkedBy)
}

func TestMarkAttendanceUpdatesSameDay(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return date.Add(30 * time.Hour) }

	c, _ := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"absent"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, attendance.records, 1)
	assert.Equal(t, model.AttendanceAbsent, attendance.records[0].Status)
}

func TestMarkAttendanceLockedAfterEditWindow(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	// Day ends Aug 26 00:00; the 24h window closes Aug 27 00:00.
	h.now = func() time.Time { return time.Date(2026, 8, 27, 0, 0, 1, 0, time.UTC) }

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-25","entries":[{"student_id":1,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, attendance.records)
}

func TestMarkAttendanceSuperAdminBypassesLock(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	h.now = func() time.Time { return time.Date(2026, 8, 27, 0, 0, 1, 0, time.UTC) }

	super := &authz.Principal{UserID: 1, Role: authz.RoleSuperAdmin}
	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-25","entries":[{"student_id":1,"status":"present"}]}`,
		super)
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, attendance.records, 1)
}

func TestMarkAttendanceSuperAdminRemarkUpdatesJamiaRecord(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))
	h.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	c, _ := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	super := &authz.Principal{UserID: 1, Role: authz.RoleSuperAdmin}
	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"absent"}]}`,
		super)
	require.NoError(t, h.Mark(c))

	// The day stays keyed to the student's jamia; the re-mark must not
	// write a second, unscoped record.
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, attendance.records, 1)
	assert.Equal(t, model.AttendanceAbsent, attendance.records[0].Status)
	require.NotNil(t, attendance.records[0].JamiaID)
	assert.Equal(t, uint(1), *attendance.records[0].JamiaID)
}

func TestMarkAttendanceDeniedEntryWritesNothing(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Bilal", JamiaID: uintPtr(2)}))
	h.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"present"},{"student_id":2,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	// A cross-tenant entry rejects the whole batch, including entries
	// listed before it.
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, attendance.records)
}

func TestMarkAttendanceRejectsFutureDate(t *testing.T) {
	h, attendance, _ := attendanceFixture(t)
	h.now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-26","entries":[{"student_id":1,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, attendance.records)
}

func TestMarkAttendanceRejectsUnknownStatus(t *testing.T) {
	h, _, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))
	h.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"vanished"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAttendanceCrossTenantStudent(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Bilal", JamiaID: uintPtr(2)}))
	h.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, attendance.records)
}

func TestMarkAttendanceStudentRoleForbidden(t *testing.T) {
	h, _, _ := attendanceFixture(t)

	p := &authz.Principal{UserID: 5, Role: authz.RoleStudent, JamiaID: uintPtr(1), LinkedID: uintPtr(1)}
	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"present"}]}`, p)
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkAttendanceModuleDisabled(t *testing.T) {
	jamias := &fakeJamiaStore{jamias: map[uint]*model.Jamia{1: activeJamia(1, "alpha")}}
	jamias.jamias[1].Modules["attendance"] = false
	students := newFakeStudentStore()
	h := NewAttendanceHandler(&fakeAttendanceStore{}, students, testGuard(jamias), testValidate, 24*time.Hour)

	c, rec := newTestContext(http.MethodPost, "/api/attendance",
		`{"date":"2026-08-28","entries":[{"student_id":1,"status":"present"}]}`,
		adminPrincipal(1))
	require.NoError(t, h.Mark(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListByStudentUsesOwnLinkForStudents(t *testing.T) {
	h, attendance, students := attendanceFixture(t)
	require.NoError(t, students.Create(context.Background(), &model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))
	attendance.records = []model.AttendanceRecord{
		{ID: 1, StudentID: 1, Date: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), Status: "present", JamiaID: uintPtr(1)},
		{ID: 2, StudentID: 2, Date: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), Status: "absent", JamiaID: uintPtr(1)},
	}

	p := &authz.Principal{UserID: 5, Role: authz.RoleStudent, JamiaID: uintPtr(1), LinkedID: uintPtr(1)}
	c, rec := newTestContext(http.MethodGet, "/api/attendance/students/2", "", p)
	c.SetParamNames("student_id")
	c.SetParamValues("2")
	require.NoError(t, h.ListByStudent(c))

	// The path parameter is ignored for student principals.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"student_id":2`)
	assert.Contains(t, rec.Body.String(), `"student_id":1`)
}
