package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

func feeFixture(t *testing.T) (*FeeHandler, *fakeFeeStore, *fakeStudentStore) {
	t.Helper()
	jamias := &fakeJamiaStore{jamias: map[uint]*model.Jamia{1: activeJamia(1, "alpha")}}
	fees := newFakeFeeStore()
	students := newFakeStudentStore()
	h := NewFeeHandler(fees, students, testGuard(jamias), testValidate)
	return h, fees, students
}

func generate(t *testing.T, h *FeeHandler, structureID, month string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	c, rec := newTestContext(http.MethodPost, "/api/fees/structures/"+structureID+"/invoices",
		`{"month":"`+month+`"}`, adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues(structureID)
	return rec, h.GenerateInvoices(c)
}

func TestGenerateInvoices(t *testing.T) {
	h, fees, students := feeFixture(t)
	require.NoError(t, fees.CreateStructure(context.Background(),
		&model.FeeStructure{Name: "Tuition", Amount: 500, JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", Status: model.StudentActive, JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Bilal", Status: model.StudentActive, JamiaID: uintPtr(1)}))
	// Graduated students are not billed.
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Hamza", Status: model.StudentGraduated, JamiaID: uintPtr(1)}))

	rec, err := generate(t, h, "1", "2026-09")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, fees.invoices, 2)
	for _, inv := range fees.invoices {
		assert.Equal(t, model.InvoiceUnpaid, inv.Status)
		assert.Equal(t, 500.0, inv.Amount)
		assert.Equal(t, "2026-09", inv.Month)
	}
}

func TestGenerateInvoicesSkipsAlreadyInvoiced(t *testing.T) {
	h, fees, students := feeFixture(t)
	require.NoError(t, fees.CreateStructure(context.Background(),
		&model.FeeStructure{Name: "Tuition", Amount: 500, JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", Status: model.StudentActive, JamiaID: uintPtr(1)}))

	rec, err := generate(t, h, "1", "2026-09")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fees.invoices, 1)

	// Re-running the same month creates nothing new.
	rec, err = generate(t, h, "1", "2026-09")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, fees.invoices, 1)
	assert.Contains(t, rec.Body.String(), `"skipped":1`)

	// A new month bills everyone again.
	rec, err = generate(t, h, "1", "2026-10")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, fees.invoices, 2)
}

func TestGenerateInvoicesRejectsBadMonth(t *testing.T) {
	h, fees, _ := feeFixture(t)
	require.NoError(t, fees.CreateStructure(context.Background(),
		&model.FeeStructure{Name: "Tuition", Amount: 500, JamiaID: uintPtr(1)}))

	rec, err := generate(t, h, "1", "September")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, err = generate(t, h, "1", "2026-13")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateInvoicesOnlyForOwnClass(t *testing.T) {
	h, fees, students := feeFixture(t)
	require.NoError(t, fees.CreateStructure(context.Background(),
		&model.FeeStructure{Name: "Hifz fee", Amount: 300, ClassName: "hifz-1", JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", Status: model.StudentActive, ClassName: "hifz-1", JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Bilal", Status: model.StudentActive, ClassName: "nazira-2", JamiaID: uintPtr(1)}))

	rec, err := generate(t, h, "1", "2026-09")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fees.invoices, 1)
	assert.Equal(t, uint(1), fees.invoices[0].StudentID)
}

func TestRecordPayment(t *testing.T) {
	h, fees, _ := feeFixture(t)
	fees.invoices = []model.Invoice{{
		ID: 7, StudentID: 1, FeeStructureID: 1, Month: "2026-09",
		Amount: 500, Status: model.InvoiceUnpaid, JamiaID: uintPtr(1),
	}}

	c, rec := newTestContext(http.MethodPost, "/api/fees/invoices/7/payments",
		`{"amount":200}`, adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.RecordPayment(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.InvoicePartial, fees.invoices[0].Status)
	assert.Equal(t, 200.0, fees.invoices[0].PaidAmount)

	c, rec = newTestContext(http.MethodPost, "/api/fees/invoices/7/payments",
		`{"amount":300}`, adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.RecordPayment(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.InvoicePaid, fees.invoices[0].Status)

	// Paying a settled invoice conflicts.
	c, rec = newTestContext(http.MethodPost, "/api/fees/invoices/7/payments",
		`{"amount":1}`, adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.RecordPayment(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	h, fees, _ := feeFixture(t)
	fees.invoices = []model.Invoice{{
		ID: 7, StudentID: 1, FeeStructureID: 1, Month: "2026-09",
		Amount: 500, Status: model.InvoiceUnpaid, JamiaID: uintPtr(1),
	}}

	c, rec := newTestContext(http.MethodPost, "/api/fees/invoices/7/payments",
		`{"amount":600}`, adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.RecordPayment(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0.0, fees.invoices[0].PaidAmount)
}

func TestGenerateInvoicesCrossTenantStructure(t *testing.T) {
	h, fees, _ := feeFixture(t)
	require.NoError(t, fees.CreateStructure(context.Background(),
		&model.FeeStructure{Name: "Tuition", Amount: 500, JamiaID: uintPtr(2)}))

	rec, err := generate(t, h, "1", "2026-09")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, fees.invoices)
}
