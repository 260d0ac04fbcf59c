package seating

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Versions-per-day bounds for a generation request.
const (
	defaultVersionsPerDay = 1
	maxVersionsPerDay     = 5
)

// SeatingService handles business logic for seating plans and invigilator
// allocation.
type SeatingService struct {
	repo *SeatingRepository
}

// NewSeatingService creates a new seating service.
func NewSeatingService(repo *SeatingRepository) *SeatingService {
	return &SeatingService{repo: repo}
}

// PlanRef identifies one generated plan.
type PlanRef struct {
	ID       primitive.ObjectID `json:"id"`
	DayIndex int                `json:"dayIndex"`
	Version  int                `json:"version"`
}

// GeneratePlans creates one seating plan per (day, version) pair for the
// session. If any plan already exists for the session the whole request is
// rejected; regeneration requires deleting the old plans first.
func (s *SeatingService) GeneratePlans(ctx context.Context, sessionID primitive.ObjectID, versionsPerDay int) ([]PlanRef, error) {
	if versionsPerDay == 0 {
		versionsPerDay = defaultVersionsPerDay
	}
	if versionsPerDay < 1 || versionsPerDay > maxVersionsPerDay {
		return nil, &ValidationError{Message: "versionsPerDay must be between 1 and 5"}
	}

	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &NotFoundError{Resource: "session"}
	}

	// Fast-fail pre-check. The unique plan index still catches a concurrent
	// writer that slips past this read.
	existing, err := s.repo.FindPlansBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, &ConflictError{DaysWithPlans: planDays(existing)}
	}

	students, rooms, err := s.loadSelections(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, &ConflictError{Message: "select rooms before generating plans"}
	}
	if err := validateRooms(rooms); err != nil {
		return nil, err
	}

	// Each day seats the full selected roster, so one capacity check covers
	// the whole batch.
	if err := checkCapacity(students, rooms, session.ExamType); err != nil {
		return nil, err
	}

	created := make([]PlanRef, 0, session.DaysCount*versionsPerDay)
	createdIDs := make([]primitive.ObjectID, 0, cap(created))
	for dayIndex := 1; dayIndex <= session.DaysCount; dayIndex++ {
		for version := 1; version <= versionsPerDay; version++ {
			seed := uuid.NewString()
			plan := &SeatingPlan{
				ID:          primitive.NewObjectID(),
				SessionID:   sessionID,
				DayIndex:    dayIndex,
				Version:     version,
				Seed:        seed,
				Algo:        ShuffleAlgo,
				CreatedAt:   time.Now(),
				Assignments: BuildAssignments(students, rooms, session.ExamType, seed),
			}
			if err := s.repo.CreatePlan(ctx, plan); err != nil {
				// Plans from earlier iterations of this request are cleaned
				// up best-effort; each insert was individually atomic.
				_ = s.repo.DeletePlansByIDs(ctx, createdIDs)
				return nil, err
			}
			created = append(created, PlanRef{ID: plan.ID, DayIndex: dayIndex, Version: version})
			createdIDs = append(createdIDs, plan.ID)
		}
	}
	return created, nil
}

func planDays(plans []SeatingPlan) []int {
	var days []int
	seen := make(map[int]bool)
	for _, plan := range plans {
		if !seen[plan.DayIndex] {
			seen[plan.DayIndex] = true
			days = append(days, plan.DayIndex)
		}
	}
	return days
}

// loadSelections resolves the session's selected students and selected
// active rooms.
func (s *SeatingService) loadSelections(ctx context.Context, sessionID primitive.ObjectID) ([]Student, []Room, error) {
	studentIDs, err := s.repo.FindSessionStudentIDs(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	students, err := s.repo.FindStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, nil, err
	}

	rooms, err := s.loadSelectedRooms(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return students, rooms, nil
}

func validateRooms(rooms []Room) error {
	for _, room := range rooms {
		if room.Benches < 0 {
			return &ValidationError{Message: "room " + room.Block + "-" + room.RoomNo + " has a negative bench count"}
		}
		if room.SeatsPerBench < 1 {
			return &ValidationError{Message: "room " + room.Block + "-" + room.RoomNo + " has no seats per bench"}
		}
	}
	return nil
}

func checkCapacity(students []Student, rooms []Room, examType string) error {
	totalBenches, totalSeats := TotalSeats(rooms, examType)
	if len(students) <= totalSeats {
		return nil
	}
	neededBenches := len(students)
	if examType == ExamTypeMid {
		neededBenches = (len(students) + 1) / 2
	}
	return &CapacityError{
		StudentsSelected: len(students),
		TotalSeats:       totalSeats,
		TotalBenches:     totalBenches,
		NeededBenches:    neededBenches,
		Deficit:          len(students) - totalSeats,
	}
}

// AssignInvigilators shuffles the candidate faculty and assigns perRoom of
// them to each selected room. The allocation is intentionally not
// reproducible and fully replaces any previous one.
func (s *SeatingService) AssignInvigilators(ctx context.Context, sessionID primitive.ObjectID, facultyIDs []primitive.ObjectID) (*InvigilatorAssignment, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &NotFoundError{Resource: "session"}
	}

	rooms, err := s.loadSelectedRooms(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, &ConflictError{Message: "select rooms before assigning invigilators"}
	}

	candidates := dedupeIDs(facultyIDs)
	perRoom := PerRoomInvigilators(session.ExamType)
	required := len(rooms) * perRoom
	if len(candidates) < required {
		return nil, &ValidationError{Message: fmt.Sprintf("select at least %d faculty for this session, got %d", required, len(candidates))}
	}

	shuffled := make([]primitive.ObjectID, len(candidates))
	copy(shuffled, candidates)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assignment := buildInvigilatorAssignment(sessionID, perRoom, rooms, shuffled[:required])
	if err := s.repo.ReplaceInvigilatorAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// buildInvigilatorAssignment assembles the replacement document for a
// session's allocation. The _id stays zero: Mongo rejects a replacement that
// alters the matched document's immutable _id, so the upsert must keep the
// existing one (or generate one on first insert).
func buildInvigilatorAssignment(sessionID primitive.ObjectID, perRoom int, rooms []Room, faculty []primitive.ObjectID) *InvigilatorAssignment {
	return &InvigilatorAssignment{
		SessionID:  sessionID,
		PerRoom:    perRoom,
		AssignedAt: time.Now(),
		Rooms:      ChunkInvigilators(SortRooms(rooms), faculty, perRoom),
	}
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// loadSelectedRooms resolves the session's selected rooms, dropping any
// that were deactivated after selection.
func (s *SeatingService) loadSelectedRooms(ctx context.Context, sessionID primitive.ObjectID) ([]Room, error) {
	roomIDs, err := s.repo.FindSessionRoomIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	selected, err := s.repo.FindRoomsByIDs(ctx, roomIDs)
	if err != nil {
		return nil, err
	}
	var rooms []Room
	for _, room := range selected {
		if room.IsActive {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

// GetInvigilators returns the current allocation for a session, if any.
func (s *SeatingService) GetInvigilators(ctx context.Context, sessionID primitive.ObjectID) (*ExamSession, *InvigilatorAssignment, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, &NotFoundError{Resource: "session"}
	}
	assignment, err := s.repo.FindInvigilatorAssignment(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, assignment, nil
}

// PlanHeader is the plan metadata returned to readers.
type PlanHeader struct {
	ID        primitive.ObjectID `json:"id"`
	SessionID primitive.ObjectID `json:"sessionId"`
	DayIndex  int                `json:"dayIndex"`
	Version   int                `json:"version"`
	Seed      string             `json:"seed"`
	Algo      string             `json:"algo"`
	ExamType  string             `json:"examType"`
	CreatedAt time.Time          `json:"createdAt"`
}

// PlanRoomView groups a plan's assignments under one room, in seat order.
type PlanRoomView struct {
	RoomID  primitive.ObjectID `json:"roomId"`
	Block   string             `json:"block"`
	RoomNo  string             `json:"roomNo"`
	Benches int                `json:"benches"`
	Seats   []PlanSeatView     `json:"assignments"`
}

// PlanSeatView is one (bench, seat, student) tuple.
type PlanSeatView struct {
	BenchNo int            `json:"benchNo"`
	SeatNo  int            `json:"seatNo"`
	Student StudentSummary `json:"student"`
}

// StudentSummary is the student shape exposed on plan reads.
type StudentSummary struct {
	ID     primitive.ObjectID `json:"id"`
	RollNo string             `json:"rollNo"`
	Name   string             `json:"name"`
	Dept   string             `json:"dept"`
	Year   int                `json:"year"`
}

// PlanDetail is the full room-sheet shape consumed by renderers.
type PlanDetail struct {
	Plan  PlanHeader     `json:"plan"`
	Rooms []PlanRoomView `json:"rooms"`
}

// GetPlan returns the plan header plus, per room in room total order, the
// seated students.
func (s *SeatingService) GetPlan(ctx context.Context, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.repo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &NotFoundError{Resource: "seating plan"}
	}
	session, err := s.repo.FindSessionByID(ctx, plan.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &NotFoundError{Resource: "session"}
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

	rooms, err := s.repo.FindRoomsByIDs(ctx, roomIDs)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.FindStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	studentByID := make(map[primitive.ObjectID]Student, len(students))
	for _, student := range students {
		studentByID[student.ID] = student
	}

	views := make([]PlanRoomView, 0, len(rooms))
	for _, room := range SortRooms(rooms) {
		view := PlanRoomView{
			RoomID:  room.ID,
			Block:   room.Block,
			RoomNo:  room.RoomNo,
			Benches: room.Benches,
			Seats:   []PlanSeatView{},
		}
		for _, assignment := range plan.Assignments {
			if assignment.RoomID != room.ID {
				continue
			}
			student := studentByID[assignment.StudentID]
			view.Seats = append(view.Seats, PlanSeatView{
				BenchNo: assignment.BenchNo,
				SeatNo:  assignment.SeatNo,
				Student: StudentSummary{
					ID:     student.ID,
					RollNo: student.RollNo,
					Name:   student.Name,
					Dept:   student.Dept,
					Year:   student.Year,
				},
			})
		}
		views = append(views, view)
	}

	return &PlanDetail{
		Plan: PlanHeader{
			ID:        plan.ID,
			SessionID: plan.SessionID,
			DayIndex:  plan.DayIndex,
			Version:   plan.Version,
			Seed:      plan.Seed,
			Algo:      plan.Algo,
			ExamType:  session.ExamType,
			CreatedAt: plan.CreatedAt,
		},
		Rooms: views,
	}, nil
}

// RoomOccupancy is the assigned-seat count for one room of a plan.
type RoomOccupancy struct {
	RoomID   primitive.ObjectID `json:"roomId"`
	Block    string             `json:"block"`
	RoomNo   string             `json:"roomNo"`
	Assigned int                `json:"assigned"`
}

// PlanStats summarizes how a plan spreads students across rooms.
type PlanStats struct {
	PlanID        primitive.ObjectID `json:"planId"`
	TotalAssigned int                `json:"totalAssigned"`
	Rooms         []RoomOccupancy    `json:"rooms"`
	MeanPerRoom   float64            `json:"meanPerRoom"`
	MedianPerRoom float64            `json:"medianPerRoom"`
	MinPerRoom    float64            `json:"minPerRoom"`
	MaxPerRoom    float64            `json:"maxPerRoom"`
}

// GetPlanStats computes per-room occupancy aggregates for a plan.
func (s *SeatingService) GetPlanStats(ctx context.Context, planID primitive.ObjectID) (*PlanStats, error) {
	detail, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	result := &PlanStats{PlanID: planID, Rooms: []RoomOccupancy{}}
	counts := make([]float64, 0, len(detail.Rooms))
	for _, room := range detail.Rooms {
		result.Rooms = append(result.Rooms, RoomOccupancy{
			RoomID:   room.RoomID,
			Block:    room.Block,
			RoomNo:   room.RoomNo,
			Assigned: len(room.Seats),
		})
		result.TotalAssigned += len(room.Seats)
		counts = append(counts, float64(len(room.Seats)))
	}
	if len(counts) == 0 {
		return result, nil
	}

	// stats errors only on empty input, which is handled above.
	result.MeanPerRoom, _ = stats.Mean(counts)
	result.MedianPerRoom, _ = stats.Median(counts)
	result.MinPerRoom, _ = stats.Min(counts)
	result.MaxPerRoom, _ = stats.Max(counts)
	return result, nil
}

// ListPlans returns the session's plans ordered by day then version.
func (s *SeatingService) ListPlans(ctx context.Context, sessionID primitive.ObjectID) ([]PlanRef, error) {
	plans, err := s.repo.FindPlansBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	refs := make([]PlanRef, 0, len(plans))
	for _, plan := range plans {
		refs = append(refs, PlanRef{ID: plan.ID, DayIndex: plan.DayIndex, Version: plan.Version})
	}
	return refs, nil
}

// DeletePlan removes one plan; this is the explicit step that unblocks
// regeneration for its session.
func (s *SeatingService) DeletePlan(ctx context.Context, planID primitive.ObjectID) error {
	return s.repo.DeletePlan(ctx, planID)
}

// CreateSession persists a new exam session.
func (s *SeatingService) CreateSession(ctx context.Context, examType string, daysCount int) (*ExamSession, error) {
	session := &ExamSession{
		ID:        primitive.NewObjectID(),
		ExamType:  examType,
		DaysCount: daysCount,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SessionDetail is the session summary with its current selections.
type SessionDetail struct {
	Session            *ExamSession         `json:"session"`
	StudentCount       int                  `json:"studentCount"`
	RoomCount          int                  `json:"roomCount"`
	SelectedStudentIDs []primitive.ObjectID `json:"selectedStudentIds"`
	SelectedRoomIDs    []primitive.ObjectID `json:"selectedRoomIds"`
}

// GetSession returns a session with its selection counts and ids.
func (s *SeatingService) GetSession(ctx context.Context, sessionID primitive.ObjectID) (*SessionDetail, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &NotFoundError{Resource: "session"}
	}
	studentIDs, err := s.repo.FindSessionStudentIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	roomIDs, err := s.repo.FindSessionRoomIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{
		Session:            session,
		StudentCount:       len(studentIDs),
		RoomCount:          len(roomIDs),
		SelectedStudentIDs: studentIDs,
		SelectedRoomIDs:    roomIDs,
	}, nil
}

// SelectRooms replaces the session's room selection. When plans already
// exist the selection still changes, but the returned warning names the
// planned days that no longer match it.
func (s *SeatingService) SelectRooms(ctx context.Context, sessionID primitive.ObjectID, roomIDs []primitive.ObjectID) (string, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", &NotFoundError{Resource: "session"}
	}
	if err := s.repo.ReplaceSessionRooms(ctx, sessionID, roomIDs); err != nil {
		return "", err
	}
	return s.selectionWarning(ctx, sessionID)
}

// SelectStudents replaces the session's student selection, with the same
// drift warning as SelectRooms.
func (s *SeatingService) SelectStudents(ctx context.Context, sessionID primitive.ObjectID, studentIDs []primitive.ObjectID) (string, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", &NotFoundError{Resource: "session"}
	}
	if err := s.repo.ReplaceSessionStudents(ctx, sessionID, studentIDs); err != nil {
		return "", err
	}
	return s.selectionWarning(ctx, sessionID)
}

func (s *SeatingService) selectionWarning(ctx context.Context, sessionID primitive.ObjectID) (string, error) {
	plans, err := s.repo.FindPlansBySession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(plans) == 0 {
		return "", nil
	}
	conflict := &ConflictError{DaysWithPlans: planDays(plans)}
	return "selection changed while plans exist: " + conflict.Error(), nil
}

// ListRooms returns all active rooms in room total order.
func (s *SeatingService) ListRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.repo.FindActiveRooms(ctx)
	if err != nil {
		return nil, err
	}
	return SortRooms(rooms), nil
}

// CreateRoom persists a new room.
func (s *SeatingService) CreateRoom(ctx context.Context, room *Room) error {
	return s.repo.CreateRoom(ctx, room)
}

// UpdateRoom updates a room's fields.
func (s *SeatingService) UpdateRoom(ctx context.Context, id primitive.ObjectID, room *Room) error {
	return s.repo.UpdateRoom(ctx, id, room)
}

// DeleteRoom removes a room.
func (s *SeatingService) DeleteRoom(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.DeleteRoom(ctx, id)
}

// ListStudents returns students, optionally filtered by dept and year.
func (s *SeatingService) ListStudents(ctx context.Context, dept string, year int) ([]Student, error) {
	return s.repo.FindStudents(ctx, dept, year)
}

// CreateStudent persists a new student.
func (s *SeatingService) CreateStudent(ctx context.Context, student *Student) error {
	return s.repo.CreateStudent(ctx, student)
}
