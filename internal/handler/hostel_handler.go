package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
)

// HostelHandler serves rooms and allocations.
type HostelHandler struct {
	hostel   store.HostelStore
	students store.StudentStore
	guard    *authz.Authorizer
	validate *validator.Validate
}

// NewHostelHandler creates the hostel handler.
func NewHostelHandler(hostel store.HostelStore, students store.StudentStore, guard *authz.Authorizer, validate *validator.Validate) *HostelHandler {
	return &HostelHandler{hostel: hostel, students: students, guard: guard, validate: validate}
}

// CreateRoom adds a room.
func (h *HostelHandler) CreateRoom(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleHostel, nil)
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
		Number   string `json:"number" validate:"required"`
		Capacity int    `json:"capacity" validate:"gte=1"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "number and a capacity of at least 1 are required")
	}

	room := model.HostelRoom{
		Number:   req.Number,
		Capacity: req.Capacity,
		JamiaID:  p.JamiaID,
	}
	if err := h.hostel.CreateRoom(c.Request().Context(), &room); err != nil {
		return serverError(c, log, "Failed to create room", err)
	}

	log.Info("Hostel room created", zap.Uint("id", room.ID), zap.String("number", room.Number))
	return c.JSON(http.StatusCreated, room)
}

// UpdateRoom edits a room's number or capacity.
func (h *HostelHandler) UpdateRoom(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid room id")
	}

	room, err := h.hostel.RoomByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load room", err)
	}
	if room == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleHostel, room)
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
		Number   *string `json:"number"`
		Capacity *int    `json:"capacity"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.Number != nil {
		room.Number = *req.Number
	}
	if req.Capacity != nil {
		if *req.Capacity < room.Occupied {
			return badRequest(c, "capacity cannot be below current occupancy")
		}
		room.Capacity = *req.Capacity
	}

	if err := h.hostel.UpdateRoom(c.Request().Context(), room); err != nil {
		return serverError(c, log, "Failed to update room", err)
	}

	log.Info("Hostel room updated", zap.Uint("id", room.ID))
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom removes a room. Occupied rooms block deletion.
func (h *HostelHandler) DeleteRoom(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid room id")
	}

	room, err := h.hostel.RoomByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load room", err)
	}
	if room == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleHostel, room)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	if room.Occupied > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is occupied"})
	}

	if err := h.hostel.DeleteRoom(c.Request().Context(), room.ID); err != nil {
		return serverError(c, log, "Failed to delete room", err)
	}

	log.Info("Hostel room deleted", zap.Uint("id", room.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "room deleted"})
}

// ListRooms returns the jamia's rooms.
func (h *HostelHandler) ListRooms(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleHostel, nil)
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

	rooms, err := h.hostel.ListRooms(c.Request().Context(), scope)
	if err != nil {
		return serverError(c, log, "Failed to list rooms", err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Allocate places a student in a room.
func (h *HostelHandler) Allocate(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleHostel, nil)
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
		RoomID    uint `json:"room_id" validate:"required"`
		StudentID uint `json:"student_id" validate:"required"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "room_id and student_id are required")
	}

	room, err := h.hostel.RoomByID(c.Request().Context(), req.RoomID)
	if err != nil {
		return serverError(c, log, "Failed to load room", err)
	}
	if room == nil {
		return notFound(c)
	}
	rd, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, room)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !rd.Allowed {
		return denied(c, log, rd, true)
	}

	student, err := h.students.ByID(c.Request().Context(), req.StudentID)
	if err != nil {
		return serverError(c, log, "Failed to load student", err)
	}
	if student == nil {
		return notFound(c)
	}
	sd, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, student)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !sd.Allowed {
		return denied(c, log, sd, true)
	}

	if room.Occupied >= room.Capacity {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is full"})
	}

	alloc := model.HostelAllocation{
		RoomID:    room.ID,
		StudentID: student.ID,
		From:      time.Now(),
		JamiaID:   room.JamiaID,
	}
	if err := h.hostel.CreateAllocation(c.Request().Context(), &alloc); err != nil {
		return serverError(c, log, "Failed to create allocation", err)
	}

	room.Occupied++
	if err := h.hostel.UpdateRoom(c.Request().Context(), room); err != nil {
		return serverError(c, log, "Failed to update room", err)
	}

	log.Info("Student allocated to room",
		zap.Uint("room_id", room.ID),
		zap.Uint("student_id", student.ID))
	return c.JSON(http.StatusCreated, alloc)
}

// Vacate frees a bed.
func (h *HostelHandler) Vacate(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid allocation id")
	}

	alloc, err := h.hostel.AllocationByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load allocation", err)
	}
	if alloc == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleHostel, alloc)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	if alloc.VacatedAt != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already vacated"})
	}

	now := time.Now()
	alloc.VacatedAt = &now
	if err := h.hostel.UpdateAllocation(c.Request().Context(), alloc); err != nil {
		return serverError(c, log, "Failed to update allocation", err)
	}

	room, err := h.hostel.RoomByID(c.Request().Context(), alloc.RoomID)
	if err != nil {
		return serverError(c, log, "Failed to load room", err)
	}
	if room != nil && room.Occupied > 0 {
		room.Occupied--
		if err := h.hostel.UpdateRoom(c.Request().Context(), room); err != nil {
			return serverError(c, log, "Failed to update room", err)
		}
	}

	log.Info("Allocation vacated", zap.Uint("id", alloc.ID))
	return c.JSON(http.StatusOK, alloc)
}

// ListAllocations returns allocations; pass active=true for current ones.
func (h *HostelHandler) ListAllocations(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleHostel, nil)
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

	allocations, err := h.hostel.ListAllocations(c.Request().Context(), scope, c.QueryParam("active") == "true")
	if err != nil {
		return serverError(c, log, "Failed to list allocations", err)
	}
	return c.JSON(http.StatusOK, allocations)
}
