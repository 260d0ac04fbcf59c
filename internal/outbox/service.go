package outbox

import (
	"context"
	"fmt"
	"log"
	"time"

	"ExamHallPlanner/internal/config"
	"ExamHallPlanner/internal/seating"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sendBatchSize bounds how many queued emails one scheduler tick sends.
const sendBatchSize = 200

// OutboxService renders seat allocation notices from finished plans and
// delivers queued ones. The seating engine never sends anything itself; this
// service is a read-only consumer of the plan shape.
type OutboxService struct {
	repo         *OutboxRepository
	seatingRepo  *seating.SeatingRepository
	emailService *config.EmailService
}

// NewOutboxService creates a new OutboxService.
func NewOutboxService(repo *OutboxRepository, seatingRepo *seating.SeatingRepository, emailService *config.EmailService) *OutboxService {
	return &OutboxService{repo: repo, seatingRepo: seatingRepo, emailService: emailService}
}

// renderSeatEmail produces the subject and body for one assignment.
func renderSeatEmail(dayIndex int, block, roomNo string, benchNo, seatNo int) (subject, body string) {
	subject = fmt.Sprintf("Seating Allocation - Day %d", dayIndex)
	body = fmt.Sprintf("Your seat: Day %d, Block %s, Room %s, Bench %d, Seat %d",
		dayIndex, block, roomNo, benchNo, seatNo)
	return subject, body
}

// QueueForPlan renders one email per assignment in the plan and queues the
// rows. Already-queued (plan, student) pairs are skipped, so the call is
// idempotent. Returns the number of rows created.
func (s *OutboxService) QueueForPlan(ctx context.Context, planID primitive.ObjectID) (int, error) {
	plan, err := s.seatingRepo.FindPlanByID(ctx, planID)
	if err != nil {
		return 0, err
	}
	if plan == nil {
		return 0, &seating.NotFoundError{Resource: "seating plan"}
	}

	roomIDs := make([]primitive.ObjectID, 0)
	seenRooms := make(map[primitive.ObjectID]bool)
	studentIDs := make([]primitive.ObjectID, 0, len(plan.Assignments))
	for _, assignment := range plan.Assignments {
		if !seenRooms[assignment.RoomID] {
			seenRooms[assignment.RoomID] = true
			roomIDs = append(roomIDs, assignment.RoomID)
		}
		studentIDs = append(studentIDs, assignment.StudentID)
	}

	rooms, err := s.seatingRepo.FindRoomsByIDs(ctx, roomIDs)
	if err != nil {
		return 0, err
	}
	roomByID := make(map[primitive.ObjectID]seating.Room, len(rooms))
	for _, room := range rooms {
		roomByID[room.ID] = room
	}
	students, err := s.seatingRepo.FindStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return 0, err
	}
	emailByStudent := make(map[primitive.ObjectID]string, len(students))
	for _, student := range students {
		emailByStudent[student.ID] = student.Email
	}

	emails := make([]OutboxEmail, 0, len(plan.Assignments))
	for _, assignment := range plan.Assignments {
		room := roomByID[assignment.RoomID]
		subject, body := renderSeatEmail(plan.DayIndex, room.Block, room.RoomNo, assignment.BenchNo, assignment.SeatNo)
		emails = append(emails, OutboxEmail{
			PlanID:    planID,
			StudentID: assignment.StudentID,
			ToEmail:   emailByStudent[assignment.StudentID],
			Subject:   subject,
			Body:      body,
			Status:    StatusQueued,
			CreatedAt: time.Now(),
		})
	}
	return s.repo.QueueEmails(ctx, emails)
}

// ListForPlan returns a plan's outbox rows, optionally filtered by a partial
// roll number match.
func (s *OutboxService) ListForPlan(ctx context.Context, planID primitive.ObjectID, rollNo string) ([]OutboxEmail, error) {
	var studentIDs []primitive.ObjectID
	if rollNo != "" {
		students, err := s.seatingRepo.FindStudentsByRollNo(ctx, rollNo)
		if err != nil {
			return nil, err
		}
		studentIDs = make([]primitive.ObjectID, 0, len(students))
		for _, student := range students {
			studentIDs = append(studentIDs, student.ID)
		}
	}
	return s.repo.FindByPlan(ctx, planID, studentIDs)
}

// SendDueEmails delivers a batch of queued emails and records the outcome
// per row.
func (s *OutboxService) SendDueEmails(ctx context.Context) {
	emails, err := s.repo.FindQueued(ctx, sendBatchSize)
	if err != nil {
		log.Println("Failed to fetch queued outbox emails:", err)
		return
	}
	for _, email := range emails {
		if err := s.emailService.SendEmail(email.ToEmail, email.Subject, email.Body); err != nil {
			log.Printf("Failed to send outbox email %v: %v", email.ID, err)
			if err := s.repo.MarkFailed(ctx, email.ID); err != nil {
				log.Printf("Failed to mark outbox email %v as failed: %v", email.ID, err)
			}
			continue
		}
		if err := s.repo.MarkSent(ctx, email.ID); err != nil {
			log.Printf("Failed to mark outbox email %v as sent: %v", email.ID, err)
		}
	}
}
