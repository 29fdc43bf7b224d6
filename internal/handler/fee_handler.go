package handler

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// FeeHandler serves fee structures, bulk invoice generation and payments.
type FeeHandler struct {
	fees     store.FeeStore
	students store.StudentStore
	guard    *authz.Authorizer
	validate *validator.Validate
}

// NewFeeHandler creates the fee handler.
func NewFeeHandler(fees store.FeeStore, students store.StudentStore, guard *authz.Authorizer, validate *validator.Validate) *FeeHandler {
	return &FeeHandler{fees: fees, students: students, guard: guard, validate: validate}
}

// CreateStructure adds a fee head.
func (h *FeeHandler) CreateStructure(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleFees, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	var req struct {
		Name      string  `json:"name" validate:"required"`
		Amount    float64 `json:"amount" validate:"required,gt=0"`
		ClassName string  `json:"class_name"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "name and a positive amount are required")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	fs := model.FeeStructure{
		Name:      req.Name,
		Amount:    req.Amount,
		ClassName: req.ClassName,
		JamiaID:   p.JamiaID,
	}
	if err := h.fees.CreateStructure(c.Request().Context(), &fs); err != nil {
		return serverError(c, log, "Failed to create fee structure", err)
	}

	log.Info("Fee structure created", zap.Uint("id", fs.ID), zap.String("name", fs.Name))
	return c.JSON(http.StatusCreated, fs)
}

// ListStructures returns the jamia's fee heads.
func (h *FeeHandler) ListStructures(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleFees, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	structures, err := h.fees.ListStructures(c.Request().Context(), scope)
	if err != nil {
		return serverError(c, log, "Failed to list fee structures", err)
	}
	return c.JSON(http.StatusOK, structures)
}

// UpdateStructure edits a fee head. Already generated invoices keep the
// amount they were billed at.
func (h *FeeHandler) UpdateStructure(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid fee structure id")
	}

	fs, err := h.fees.StructureByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load fee structure", err)
	}
	if fs == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleFees, fs)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	var req struct {
		Name      *string  `json:"name"`
		Amount    *float64 `json:"amount"`
		ClassName *string  `json:"class_name"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.Name != nil {
		fs.Name = *req.Name
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return badRequest(c, "amount must be positive")
		}
		fs.Amount = *req.Amount
	}
	if req.ClassName != nil {
		fs.ClassName = *req.ClassName
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.fees.UpdateStructure(c.Request().Context(), fs); err != nil {
		return serverError(c, log, "Failed to update fee structure", err)
	}

	log.Info("Fee structure updated", zap.Uint("id", fs.ID))
	return c.JSON(http.StatusOK, fs)
}

// DeleteStructure soft-deletes a fee head.
func (h *FeeHandler) DeleteStructure(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid fee structure id")
	}

	fs, err := h.fees.StructureByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load fee structure", err)
	}
	if fs == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleFees, fs)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.fees.DeleteStructure(c.Request().Context(), fs.ID); err != nil {
		return serverError(c, log, "Failed to delete fee structure", err)
	}

	log.Info("Fee structure deleted", zap.Uint("id", fs.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "fee structure deleted"})
}

// GenerateInvoices creates one invoice per active student from a fee
// structure for a billing month. Students already invoiced for that
// structure and month are skipped, so re-running is safe.
func (h *FeeHandler) GenerateInvoices(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid fee structure id")
	}

	fs, err := h.fees.StructureByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load fee structure", err)
	}
	if fs == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleFees, fs)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	var req struct {
		Month string `json:"month" validate:"required"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil || !monthPattern.MatchString(req.Month) {
		return badRequest(c, "month must be YYYY-MM")
	}

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	students, err := h.students.List(c.Request().Context(), scope, store.StudentFilter{
		ClassName: fs.ClassName,
		Status:    model.StudentActive,
	})
	if err != nil {
		return serverError(c, log, "Failed to list students", err)
	}

	already, err := h.fees.InvoicedStudentIDs(c.Request().Context(), fs.ID, req.Month)
	if err != nil {
		return serverError(c, log, "Failed to check existing invoices", err)
	}

	invoices := make([]model.Invoice, 0, len(students))
	for _, s := range students {
		if _, ok := already[s.ID]; ok {
			continue
		}
		invoices = append(invoices, model.Invoice{
			StudentID:      s.ID,
			FeeStructureID: fs.ID,
			Month:          req.Month,
			Amount:         fs.Amount,
			Status:         model.InvoiceUnpaid,
			JamiaID:        fs.JamiaID,
		})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.fees.CreateInvoices(c.Request().Context(), invoices); err != nil {
		return serverError(c, log, "Failed to create invoices", err)
	}
	prometheus.InvoicesGeneratedCounter.Add(float64(len(invoices)))

	log.Info("Invoices generated",
		zap.Uint("fee_structure_id", fs.ID),
		zap.String("month", req.Month),
		zap.Int("created", len(invoices)),
		zap.Int("skipped", len(students)-len(invoices)))
	return c.JSON(http.StatusOK, echo.Map{
		"created": len(invoices),
		"skipped": len(students) - len(invoices),
		"month":   req.Month,
	})
}

// ListInvoices returns invoices, filterable by student, month and status.
func (h *FeeHandler) ListInvoices(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleFees, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}

	filter := store.InvoiceFilter{
		Month:  c.QueryParam("month"),
		Status: c.QueryParam("status"),
	}
	// Students only ever see their own invoices.
	if p.Role == authz.RoleStudent {
		if p.LinkedID == nil {
			return forbiddenRole(c)
		}
		filter.StudentID = *p.LinkedID
	}

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	invoices, err := h.fees.ListInvoices(c.Request().Context(), scope, filter)
	if err != nil {
		return serverError(c, log, "Failed to list invoices", err)
	}
	return c.JSON(http.StatusOK, invoices)
}

// RecordPayment adds a payment to an invoice. Bookkeeping is a simple
// running sum; reconciliation lives elsewhere.
func (h *FeeHandler) RecordPayment(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid invoice id")
	}

	invoice, err := h.fees.InvoiceByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load invoice", err)
	}
	if invoice == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleFees, invoice)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim, authz.RoleStaff) {
		return forbiddenRole(c)
	}

	var req struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "a positive amount is required")
	}

	if invoice.Status == model.InvoicePaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invoice already paid"})
	}
	if invoice.PaidAmount+req.Amount > invoice.Amount {
		return badRequest(c, "payment exceeds amount due")
	}

	invoice.PaidAmount += req.Amount
	if invoice.PaidAmount >= invoice.Amount {
		invoice.Status = model.InvoicePaid
	} else {
		invoice.Status = model.InvoicePartial
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.fees.UpdateInvoice(c.Request().Context(), invoice); err != nil {
		return serverError(c, log, "Failed to update invoice", err)
	}

	log.Info("Payment recorded",
		zap.Uint("invoice_id", invoice.ID),
		zap.Float64("amount", req.Amount),
		zap.String("status", invoice.Status))
	return c.JSON(http.StatusOK, invoice)
}
