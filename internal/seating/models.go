package seating

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exam types determine seating density and invigilator staffing.
const (
	ExamTypeMid = "MID"
	ExamTypeSem = "SEM"
)

// ExamSession represents one exam period spanning one or more days.
type ExamSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"` // Unique identifier for the session
	ExamType  string             `bson:"exam_type"`     // MID or SEM
	DaysCount int                `bson:"days_count"`    // Number of exam days (one plan per day/version)
	CreatedAt time.Time          `bson:"created_at"`    // When the session was created
}

// Room represents a physical examination room.
type Room struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`   // Unique identifier for the room
	Block         string             `bson:"block"`           // Building block, first key of the room total order
	RoomNo        string             `bson:"room_no"`         // Room number, compared natural-numeric within a block
	Benches       int                `bson:"benches"`         // Number of benches in the room
	SeatsPerBench int                `bson:"seats_per_bench"` // Seats per bench when sharing is allowed
	IsActive      bool               `bson:"is_active"`       // Inactive rooms are excluded from selection pools
}

// Student is immutable reference data for allocation purposes.
type Student struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"` // Unique identifier for the student
	RollNo string             `bson:"roll_no"`       // Roll number, unique
	Name   string             `bson:"name"`          // Student's full name
	Dept   string             `bson:"dept"`          // Department, half of the cohort key
	Year   int                `bson:"year"`          // Year of study, half of the cohort key
	Email  string             `bson:"email"`         // Email for seat allocation notices
}

// SessionRoom records that a room is selected for a session.
type SessionRoom struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SessionID primitive.ObjectID `bson:"session_id"`
	RoomID    primitive.ObjectID `bson:"room_id"`
}

// SessionStudent records that a student is selected for a session.
type SessionStudent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SessionID primitive.ObjectID `bson:"session_id"`
	StudentID primitive.ObjectID `bson:"student_id"`
}

// SeatingPlan is one complete seat assignment for one exam day and version.
// Assignments are embedded so the plan persists as a single atomic insert,
// and a unique index on (session_id, day_index, version) is the authoritative
// guard against concurrent duplicate generation.
type SeatingPlan struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"` // Unique identifier for the plan
	SessionID   primitive.ObjectID  `bson:"session_id"`    // Reference to the session
	DayIndex    int                 `bson:"day_index"`     // Exam day, 1..DaysCount
	Version     int                 `bson:"version"`       // Shuffle version for the day, 1..versionsPerDay
	Seed        string              `bson:"seed"`          // Seed string deriving all randomness, kept for audit replay
	Algo        string              `bson:"algo"`          // Shuffle algorithm identifier (see ShuffleAlgo)
	CreatedAt   time.Time           `bson:"created_at"`    // When the plan was generated
	Assignments []SeatingAssignment `bson:"assignments"`   // One entry per seated student
}

// SeatingAssignment places one student on one physical seat.
type SeatingAssignment struct {
	StudentID primitive.ObjectID `bson:"student_id"` // Reference to the student
	RoomID    primitive.ObjectID `bson:"room_id"`    // Reference to the room
	BenchNo   int                `bson:"bench_no"`   // Bench number within the room (1-based)
	SeatNo    int                `bson:"seat_no"`    // Seat number on the bench (1-based)
}

// InvigilatorAssignment holds the full invigilator allocation for a session.
// The whole document is replaced on every assignment call, so the last call
// wins atomically.
type InvigilatorAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SessionID  primitive.ObjectID `bson:"session_id"`  // Reference to the session, unique
	PerRoom    int                `bson:"per_room"`    // Invigilators per room (2 for MID, 1 for SEM)
	AssignedAt time.Time          `bson:"assigned_at"` // When this allocation was made
	Rooms      []RoomInvigilators `bson:"rooms"`       // Allocation per room, in room total order
}

// RoomInvigilators lists the faculty supervising one room.
type RoomInvigilators struct {
	RoomID            primitive.ObjectID   `bson:"room_id" json:"roomId"`
	FacultyProfileIDs []primitive.ObjectID `bson:"faculty_profile_ids" json:"facultyProfileIds"`
}
