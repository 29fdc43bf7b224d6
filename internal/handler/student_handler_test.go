package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

func studentFixture(t *testing.T) (*StudentHandler, *fakeStudentStore, *fakeJamiaStore) {
	t.Helper()
	jamias := &fakeJamiaStore{jamias: map[uint]*model.Jamia{
		1: activeJamia(1, "alpha"),
		2: activeJamia(2, "beta"),
	}}
	students := newFakeStudentStore()
	h := NewStudentHandler(students, testGuard(jamias), testValidate)
	return h, students, jamias
}

func TestStudentCreateSetsJamiaFromPrincipal(t *testing.T) {
	h, students, _ := studentFixture(t)

	c, rec := newTestContext(http.MethodPost, "/api/students",
		`{"admission_no":"A-001","name":"Ahmed","class_name":"hifz-1"}`,
		adminPrincipal(1))
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, students.students, 1)
	require.NotNil(t, students.students[1].JamiaID)
	assert.Equal(t, uint(1), *students.students[1].JamiaID)
	assert.Equal(t, model.StudentActive, students.students[1].Status)
}

func TestStudentGetCrossTenantLooksLikeMissing(t *testing.T) {
	h, students, _ := studentFixture(t)
	require.NoError(t, students.Create(context.Background(),
		&model.Student{AdmissionNo: "B-001", Name: "Bilal", JamiaID: uintPtr(2)}))

	c, rec := newTestContext(http.MethodGet, "/api/students/1", "", adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))

	// Same answer as a nonexistent id, so probing ids leaks nothing.
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/api/students/999", "", adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentGetOwnTenant(t *testing.T) {
	h, students, _ := studentFixture(t)
	require.NoError(t, students.Create(context.Background(),
		&model.Student{AdmissionNo: "A-001", Name: "Ahmed", JamiaID: uintPtr(1)}))

	c, rec := newTestContext(http.MethodGet, "/api/students/1", "", adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admission_no":"A-001"`)
}

func TestStudentGetSuperAdminCrossesTenants(t *testing.T) {
	h, students, _ := studentFixture(t)
	require.NoError(t, students.Create(context.Background(),
		&model.Student{AdmissionNo: "B-001", Name: "Bilal", JamiaID: uintPtr(2)}))

	super := &authz.Principal{UserID: 1, Role: authz.RoleSuperAdmin}
	c, rec := newTestContext(http.MethodGet, "/api/students/1", "", super)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStudentGetLegacyRecordReadable(t *testing.T) {
	h, students, _ := studentFixture(t)
	require.NoError(t, students.Create(context.Background(),
		&model.Student{AdmissionNo: "L-001", Name: "Legacy"}))

	c, rec := newTestContext(http.MethodGet, "/api/students/1", "", adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStudentListScopedToOwnJamia(t *testing.T) {
	h, students, _ := studentFixture(t)
	require.NoError(t, students.Create(context.Background(),
		&model.Student{AdmissionNo: "A-001", Name: "Ahmed", JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{AdmissionNo: "B-001", Name: "Bilal", JamiaID: uintPtr(2)}))

	c, rec := newTestContext(http.MethodGet, "/api/students", "", adminPrincipal(1))
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A-001")
	assert.NotContains(t, rec.Body.String(), "B-001")
}

func TestStudentUpdateKeepsJamia(t *testing.T) {
	h, students, _ := studentFixture(t)
	require.NoError(t, students.Create(context.Background(),
		&model.Student{AdmissionNo: "A-001", Name: "Ahmed", JamiaID: uintPtr(1)}))

	c, rec := newTestContext(http.MethodPatch, "/api/students/1",
		`{"admission_no":"A-001","name":"Ahmed Khan","jamia_id":2}`,
		adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ahmed Khan", students.students[1].Name)
	require.NotNil(t, students.students[1].JamiaID)
	assert.Equal(t, uint(1), *students.students[1].JamiaID)
}

func TestStudentCreateInactiveJamia(t *testing.T) {
	h, _, jamias := studentFixture(t)
	jamias.jamias[1].Active = false

	c, rec := newTestContext(http.MethodPost, "/api/students",
		`{"admission_no":"A-001","name":"Ahmed"}`, adminPrincipal(1))
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStudentCreateTeacherForbidden(t *testing.T) {
	h, _, _ := studentFixture(t)

	p := &authz.Principal{UserID: 3, Role: authz.RoleTeacher, JamiaID: uintPtr(1)}
	c, rec := newTestContext(http.MethodPost, "/api/students",
		`{"admission_no":"A-001","name":"Ahmed"}`, p)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
