package seating

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeatingRepository handles DB operations for seating-related entities.
type SeatingRepository struct {
	sessionsCollection        *mongo.Collection
	roomsCollection           *mongo.Collection
	studentsCollection        *mongo.Collection
	sessionRoomsCollection    *mongo.Collection
	sessionStudentsCollection *mongo.Collection
	plansCollection           *mongo.Collection
	invigilatorsCollection    *mongo.Collection
}

// NewSeatingRepository creates a new repository for seating operations.
func NewSeatingRepository(db *mongo.Database) *SeatingRepository {
	return &SeatingRepository{
		sessionsCollection:        db.Collection("sessions"),
		roomsCollection:           db.Collection("rooms"),
		studentsCollection:        db.Collection("students"),
		sessionRoomsCollection:    db.Collection("session_rooms"),
		sessionStudentsCollection: db.Collection("session_students"),
		plansCollection:           db.Collection("seating_plans"),
		invigilatorsCollection:    db.Collection("invigilator_assignments"),
	}
}

// Session operations

func (r *SeatingRepository) CreateSession(ctx context.Context, session *ExamSession) error {
	_, err := r.sessionsCollection.InsertOne(ctx, session)
	return err
}

func (r *SeatingRepository) FindSessionByID(ctx context.Context, id primitive.ObjectID) (*ExamSession, error) {
	var session ExamSession
	err := r.sessionsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Room operations

func (r *SeatingRepository) CreateRoom(ctx context.Context, room *Room) error {
	_, err := r.roomsCollection.InsertOne(ctx, room)
	return err
}

func (r *SeatingRepository) FindActiveRooms(ctx context.Context) ([]Room, error) {
	cursor, err := r.roomsCollection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	var rooms []Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *SeatingRepository) FindRoomsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.roomsCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var rooms []Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *SeatingRepository) UpdateRoom(ctx context.Context, id primitive.ObjectID, room *Room) error {
	update := bson.M{"$set": bson.M{
		"block":           room.Block,
		"room_no":         room.RoomNo,
		"benches":         room.Benches,
		"seats_per_bench": room.SeatsPerBench,
		"is_active":       room.IsActive,
	}}
	res, err := r.roomsCollection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{Resource: "room"}
	}
	return nil
}

func (r *SeatingRepository) DeleteRoom(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.roomsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{Resource: "room"}
	}
	return nil
}

// Student operations

func (r *SeatingRepository) CreateStudent(ctx context.Context, student *Student) error {
	_, err := r.studentsCollection.InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &ConflictError{Message: "roll number already exists"}
		}
		return err
	}
	return nil
}

func (r *SeatingRepository) FindStudents(ctx context.Context, dept string, year int) ([]Student, error) {
	filter := bson.M{}
	if dept != "" {
		filter["dept"] = dept
	}
	if year > 0 {
		filter["year"] = year
	}
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: 1}, {Key: "dept", Value: 1}, {Key: "roll_no", Value: 1}})
	cursor, err := r.studentsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var students []Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *SeatingRepository) FindStudentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.studentsCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var students []Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// FindStudentsByRollNo matches students whose roll number contains the given
// fragment, case-insensitive.
func (r *SeatingRepository) FindStudentsByRollNo(ctx context.Context, rollNo string) ([]Student, error) {
	filter := bson.M{"roll_no": bson.M{"$regex": regexp.QuoteMeta(rollNo), "$options": "i"}}
	cursor, err := r.studentsCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var students []Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Selection operations. Selections are replaced wholesale: delete all rows
// for the session, then insert the new set.

func (r *SeatingRepository) ReplaceSessionRooms(ctx context.Context, sessionID primitive.ObjectID, roomIDs []primitive.ObjectID) error {
	if _, err := r.sessionRoomsCollection.DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return err
	}
	if len(roomIDs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		docs = append(docs, SessionRoom{SessionID: sessionID, RoomID: roomID})
	}
	_, err := r.sessionRoomsCollection.InsertMany(ctx, docs)
	return err
}

func (r *SeatingRepository) ReplaceSessionStudents(ctx context.Context, sessionID primitive.ObjectID, studentIDs []primitive.ObjectID) error {
	if _, err := r.sessionStudentsCollection.DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return err
	}
	if len(studentIDs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		docs = append(docs, SessionStudent{SessionID: sessionID, StudentID: studentID})
	}
	_, err := r.sessionStudentsCollection.InsertMany(ctx, docs)
	return err
}

func (r *SeatingRepository) FindSessionRoomIDs(ctx context.Context, sessionID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.sessionRoomsCollection.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	var rows []SessionRoom
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RoomID)
	}
	return ids, nil
}

func (r *SeatingRepository) FindSessionStudentIDs(ctx context.Context, sessionID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.sessionStudentsCollection.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	var rows []SessionStudent
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StudentID)
	}
	return ids, nil
}

// Plan operations

// CreatePlan persists a plan with its embedded assignments in one insert.
// A duplicate (session_id, day_index, version) means another request already
// generated this plan; the unique index is the authoritative guard.
func (r *SeatingRepository) CreatePlan(ctx context.Context, plan *SeatingPlan) error {
	_, err := r.plansCollection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &ConflictError{DaysWithPlans: []int{plan.DayIndex}}
		}
		return &PersistenceError{Op: "create seating plan", Err: err}
	}
	return nil
}

func (r *SeatingRepository) FindPlanByID(ctx context.Context, id primitive.ObjectID) (*SeatingPlan, error) {
	var plan SeatingPlan
	err := r.plansCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SeatingRepository) FindPlansBySession(ctx context.Context, sessionID primitive.ObjectID) ([]SeatingPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day_index", Value: 1}, {Key: "version", Value: 1}})
	cursor, err := r.plansCollection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	var plans []SeatingPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *SeatingRepository) DeletePlan(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.plansCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{Resource: "seating plan"}
	}
	return nil
}

func (r *SeatingRepository) DeletePlansByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.plansCollection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// Invigilator operations

// ReplaceInvigilatorAssignment swaps the session's entire allocation in a
// single upsert, so the replacement is atomic and the last call wins.
func (r *SeatingRepository) ReplaceInvigilatorAssignment(ctx context.Context, assignment *InvigilatorAssignment) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.invigilatorsCollection.ReplaceOne(ctx, bson.M{"session_id": assignment.SessionID}, assignment, opts)
	if err != nil {
		return &PersistenceError{Op: "replace invigilator assignment", Err: err}
	}
	return nil
}

func (r *SeatingRepository) FindInvigilatorAssignment(ctx context.Context, sessionID primitive.ObjectID) (*InvigilatorAssignment, error) {
	var assignment InvigilatorAssignment
	err := r.invigilatorsCollection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&assignment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}
