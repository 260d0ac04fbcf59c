package seating

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeatingHandler handles HTTP requests for sessions, rooms, students, plans
// and invigilators.
type SeatingHandler struct {
	service *SeatingService
}

// NewSeatingHandler creates a new SeatingHandler.
func NewSeatingHandler(service *SeatingService) *SeatingHandler {
	return &SeatingHandler{service: service}
}

// CreateSessionRequest represents the request to create an exam session.
type CreateSessionRequest struct {
	ExamType  string `json:"examType" validate:"required,oneof=MID SEM"` // MID or SEM
	DaysCount int    `json:"daysCount" validate:"required,min=1,max=30"` // Number of exam days
}

// CreateRoomRequest represents the request to create a room.
type CreateRoomRequest struct {
	Block         string `json:"block" validate:"required"`        // Building block
	RoomNo        string `json:"roomNo" validate:"required"`       // Room number
	Benches       int    `json:"benches" validate:"min=0"`         // Bench count
	SeatsPerBench int    `json:"seatsPerBench" validate:"min=1"`   // Seats per bench
	IsActive      *bool  `json:"isActive" validate:"omitempty"`    // Defaults to active
}

// CreateStudentRequest represents the request to create a student.
type CreateStudentRequest struct {
	RollNo string `json:"rollNo" validate:"required"`        // Roll number, unique
	Name   string `json:"name" validate:"required"`          // Full name
	Dept   string `json:"dept" validate:"required"`          // Department code
	Year   int    `json:"year" validate:"required,min=1,max=4"` // Year of study
	Email  string `json:"email" validate:"required,email"`   // Notification email
}

// SelectRoomsRequest replaces a session's room selection.
type SelectRoomsRequest struct {
	RoomIDs []string `json:"roomIds" validate:"required,dive,required"`
}

// SelectStudentsRequest replaces a session's student selection.
type SelectStudentsRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,dive,required"`
}

// GeneratePlansRequest represents the request to generate seating plans.
type GeneratePlansRequest struct {
	VersionsPerDay int `json:"versionsPerDay" validate:"omitempty,min=1,max=5"`
}

// AssignInvigilatorsRequest represents the candidate faculty for a session.
type AssignInvigilatorsRequest struct {
	FacultyProfileIDs []string `json:"facultyProfileIds" validate:"required,min=1,dive,required"`
}

// respondError maps the engine's error taxonomy to HTTP statuses with
// structured payloads where the caller needs actionable numbers.
func respondError(c echo.Context, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": notFoundErr.Error()})
	}
	var capacityErr *CapacityError
	if errors.As(err, &capacityErr) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":            capacityErr.Error(),
			"studentsSelected": capacityErr.StudentsSelected,
			"totalSeats":       capacityErr.TotalSeats,
			"deficit":          capacityErr.Deficit,
		})
	}
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		payload := map[string]interface{}{"error": conflictErr.Error()}
		if len(conflictErr.DaysWithPlans) > 0 {
			payload["daysWithPlans"] = conflictErr.DaysWithPlans
		}
		return c.JSON(http.StatusConflict, payload)
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func parseObjectID(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, &ValidationError{Message: "invalid " + name}
	}
	return id, nil
}

func parseObjectIDs(values []string, what string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(values))
	for i, value := range values {
		id, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			return nil, &ValidationError{Message: "invalid " + what + " ID"}
		}
		ids[i] = id
	}
	return ids, nil
}

// CreateSession allows admins to create a new exam session.
func (h *SeatingHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.service.CreateSession(c.Request().Context(), req.ExamType, req.DaysCount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":        session.ID,
		"examType":  session.ExamType,
		"daysCount": session.DaysCount,
		"createdAt": session.CreatedAt,
	})
}

// GetSession returns a session with its selection counts.
func (h *SeatingHandler) GetSession(c echo.Context) error {
	sessionID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	detail, err := h.service.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListRooms returns all active rooms in room total order.
func (h *SeatingHandler) ListRooms(c echo.Context) error {
	rooms, err := h.service.ListRooms(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rooms": roomViews(rooms)})
}

// RoomView is the JSON shape of a room.
type RoomView struct {
	ID            primitive.ObjectID `json:"id"`
	Block         string             `json:"block"`
	RoomNo        string             `json:"roomNo"`
	Benches       int                `json:"benches"`
	SeatsPerBench int                `json:"seatsPerBench"`
	IsActive      bool               `json:"isActive"`
}

func roomViews(rooms []Room) []RoomView {
	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, RoomView{
			ID:            room.ID,
			Block:         room.Block,
			RoomNo:        room.RoomNo,
			Benches:       room.Benches,
			SeatsPerBench: room.SeatsPerBench,
			IsActive:      room.IsActive,
		})
	}
	return views
}

// CreateRoom allows admins to create a new room.
func (h *SeatingHandler) CreateRoom(c echo.Context) error {
	var req CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid room payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	room := &Room{
		ID:            primitive.NewObjectID(),
		Block:         req.Block,
		RoomNo:        req.RoomNo,
		Benches:       req.Benches,
		SeatsPerBench: req.SeatsPerBench,
		IsActive:      isActive,
	}
	if err := h.service.CreateRoom(c.Request().Context(), room); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, roomViews([]Room{*room})[0])
}

// UpdateRoom allows admins to update a room.
func (h *SeatingHandler) UpdateRoom(c echo.Context) error {
	roomID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid room payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	room := &Room{
		Block:         req.Block,
		RoomNo:        req.RoomNo,
		Benches:       req.Benches,
		SeatsPerBench: req.SeatsPerBench,
		IsActive:      isActive,
	}
	if err := h.service.UpdateRoom(c.Request().Context(), roomID, room); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Room updated"})
}

// DeleteRoom allows admins to delete a room.
func (h *SeatingHandler) DeleteRoom(c echo.Context) error {
	roomID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteRoom(c.Request().Context(), roomID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Room deleted"})
}

// ListStudents returns students, optionally filtered by dept and year.
func (h *SeatingHandler) ListStudents(c echo.Context) error {
	year := 0
	if raw := c.QueryParam("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 4 {
			return respondError(c, &ValidationError{Message: "invalid year filter"})
		}
		year = parsed
	}
	students, err := h.service.ListStudents(c.Request().Context(), c.QueryParam("dept"), year)
	if err != nil {
		return respondError(c, err)
	}
	summaries := make([]StudentSummary, 0, len(students))
	for _, student := range students {
		summaries = append(summaries, StudentSummary{
			ID:     student.ID,
			RollNo: student.RollNo,
			Name:   student.Name,
			Dept:   student.Dept,
			Year:   student.Year,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"students": summaries})
}

// CreateStudent allows admins to create a student record.
func (h *SeatingHandler) CreateStudent(c echo.Context) error {
	var req CreateStudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	student := &Student{
		ID:     primitive.NewObjectID(),
		RollNo: req.RollNo,
		Name:   req.Name,
		Dept:   req.Dept,
		Year:   req.Year,
		Email:  req.Email,
	}
	if err := h.service.CreateStudent(c.Request().Context(), student); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"id": student.ID, "rollNo": student.RollNo})
}

// SelectRooms replaces a session's room selection.
func (h *SeatingHandler) SelectRooms(c echo.Context) error {
	sessionID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req SelectRoomsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid room selection"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	roomIDs, err := parseObjectIDs(req.RoomIDs, "room")
	if err != nil {
		return respondError(c, err)
	}

	warning, err := h.service.SelectRooms(c.Request().Context(), sessionID, roomIDs)
	if err != nil {
		return respondError(c, err)
	}
	return selectionResponse(c, warning)
}

// SelectStudents replaces a session's student selection.
func (h *SeatingHandler) SelectStudents(c echo.Context) error {
	sessionID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req SelectStudentsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student selection"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	studentIDs, err := parseObjectIDs(req.StudentIDs, "student")
	if err != nil {
		return respondError(c, err)
	}

	warning, err := h.service.SelectStudents(c.Request().Context(), sessionID, studentIDs)
	if err != nil {
		return respondError(c, err)
	}
	return selectionResponse(c, warning)
}

func selectionResponse(c echo.Context, warning string) error {
	payload := map[string]interface{}{"ok": true}
	if warning != "" {
		payload["warning"] = warning
	}
	return c.JSON(http.StatusOK, payload)
}

// GeneratePlans generates one plan per (day, version) pair for a session.
func (h *SeatingHandler) GeneratePlans(c echo.Context) error {
	sessionID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req GeneratePlansRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid generation payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	plans, err := h.service.GeneratePlans(c.Request().Context(), sessionID, req.VersionsPerDay)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"plans": plans})
}

// ListPlans returns a session's plans ordered by day then version.
func (h *SeatingHandler) ListPlans(c echo.Context) error {
	sessionID, err := primitive.ObjectIDFromHex(c.QueryParam("sessionId"))
	if err != nil {
		return respondError(c, &ValidationError{Message: "missing or invalid sessionId"})
	}
	plans, err := h.service.ListPlans(c.Request().Context(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"plans": plans})
}

// GetPlan returns a plan's header and per-room seat assignments.
func (h *SeatingHandler) GetPlan(c echo.Context) error {
	planID, err := parseObjectID(c, "planId")
	if err != nil {
		return respondError(c, err)
	}
	detail, err := h.service.GetPlan(c.Request().Context(), planID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// GetPlanStats returns per-room occupancy aggregates for a plan.
func (h *SeatingHandler) GetPlanStats(c echo.Context) error {
	planID, err := parseObjectID(c, "planId")
	if err != nil {
		return respondError(c, err)
	}
	planStats, err := h.service.GetPlanStats(c.Request().Context(), planID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, planStats)
}

// DeletePlan removes a plan, unblocking regeneration for its session.
func (h *SeatingHandler) DeletePlan(c echo.Context) error {
	planID, err := parseObjectID(c, "planId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeletePlan(c.Request().Context(), planID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Plan deleted"})
}

// GetInvigilators returns the session's current invigilator allocation.
func (h *SeatingHandler) GetInvigilators(c echo.Context) error {
	sessionID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	session, assignment, err := h.service.GetInvigilators(c.Request().Context(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	payload := map[string]interface{}{
		"examType": session.ExamType,
		"perRoom":  PerRoomInvigilators(session.ExamType),
	}
	if assignment != nil {
		payload["rooms"] = assignment.Rooms
		payload["assignedAt"] = assignment.AssignedAt
	}
	return c.JSON(http.StatusOK, payload)
}

// AssignInvigilators shuffles candidate faculty onto the session's rooms.
func (h *SeatingHandler) AssignInvigilators(c echo.Context) error {
	sessionID, err := parseObjectID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req AssignInvigilatorsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid invigilator selection"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	facultyIDs, err := parseObjectIDs(req.FacultyProfileIDs, "faculty")
	if err != nil {
		return respondError(c, err)
	}

	assignment, err := h.service.AssignInvigilators(c.Request().Context(), sessionID, facultyIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"assigned": len(assignment.Rooms) * assignment.PerRoom,
		"perRoom":  assignment.PerRoom,
	})
}
