package outbox

import (
	"errors"
	"net/http"
	"time"

	"ExamHallPlanner/internal/seating"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OutboxHandler handles HTTP requests for plan email outboxes.
type OutboxHandler struct {
	service *OutboxService
}

// NewOutboxHandler creates a new OutboxHandler.
func NewOutboxHandler(service *OutboxService) *OutboxHandler {
	return &OutboxHandler{service: service}
}

// OutboxEmailView is the JSON shape of one outbox row.
type OutboxEmailView struct {
	ID        primitive.ObjectID `json:"id"`
	PlanID    primitive.ObjectID `json:"planId"`
	StudentID primitive.ObjectID `json:"studentId"`
	ToEmail   string             `json:"toEmail"`
	Subject   string             `json:"subject"`
	Body      string             `json:"body"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

// QueuePlanEmails renders and queues one allocation notice per assignment in
// the plan.
func (h *OutboxHandler) QueuePlanEmails(c echo.Context) error {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid planId"})
	}

	created, err := h.service.QueueForPlan(c.Request().Context(), planID)
	if err != nil {
		var notFoundErr *seating.NotFoundError
		if errors.As(err, &notFoundErr) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": notFoundErr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int{"created": created})
}

// ListPlanEmails returns a plan's outbox rows, optionally filtered by a
// partial roll number.
func (h *OutboxHandler) ListPlanEmails(c echo.Context) error {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid planId"})
	}

	emails, err := h.service.ListForPlan(c.Request().Context(), planID, c.QueryParam("rollNo"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	views := make([]OutboxEmailView, 0, len(emails))
	for _, email := range emails {
		views = append(views, OutboxEmailView{
			ID:        email.ID,
			PlanID:    email.PlanID,
			StudentID: email.StudentID,
			ToEmail:   email.ToEmail,
			Subject:   email.Subject,
			Body:      email.Body,
			Status:    email.Status,
			CreatedAt: email.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"emails": views})
}
