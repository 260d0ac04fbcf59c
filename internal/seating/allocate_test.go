package seating

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeStudents(dept string, year, n int) []Student {
	students := make([]Student, 0, n)
	for i := 1; i <= n; i++ {
		students = append(students, Student{
			ID:     primitive.NewObjectID(),
			RollNo: fmt.Sprintf("%s%d-%03d", dept, year, i),
			Name:   dept + " student",
			Dept:   dept,
			Year:   year,
		})
	}
	return students
}

func makeRoom(block, roomNo string, benches, seatsPerBench int) Room {
	return Room{
		ID:            primitive.NewObjectID(),
		Block:         block,
		RoomNo:        roomNo,
		Benches:       benches,
		SeatsPerBench: seatsPerBench,
		IsActive:      true,
	}
}

func TestGroupByYearDept(t *testing.T) {
	students := append(makeStudents("CSE", 1, 3), makeStudents("ECE", 1, 2)...)
	students = append(students, makeStudents("CSE", 2, 1)...)

	groups := GroupByYearDept(students)
	if len(groups) != 3 {
		t.Fatalf("expected 3 cohorts, got %d", len(groups))
	}
	if len(groups["1-CSE"]) != 3 || len(groups["1-ECE"]) != 2 || len(groups["2-CSE"]) != 1 {
		t.Fatalf("unexpected cohort sizes: %d/%d/%d",
			len(groups["1-CSE"]), len(groups["1-ECE"]), len(groups["2-CSE"]))
	}
}

func TestInterleaveRoundRobin(t *testing.T) {
	cse := makeStudents("CSE", 1, 3)
	ece := makeStudents("ECE", 1, 2)
	mech := makeStudents("MECH", 2, 1)
	groups := map[string][]Student{
		"1-CSE":  cse,
		"1-ECE":  ece,
		"2-MECH": mech,
	}

	got := InterleaveRoundRobin(groups)
	want := []Student{cse[0], ece[0], mech[0], cse[1], ece[1], cse[2]}
	if len(got) != len(want) {
		t.Fatalf("expected %d students, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Fatalf("position %d: got %s/%d, want %s/%d",
				i, got[i].Dept, got[i].Year, want[i].Dept, want[i].Year)
		}
	}
}

func TestInterleaveSpreadsCohorts(t *testing.T) {
	groups := map[string][]Student{
		"1-CSE": makeStudents("CSE", 1, 5),
		"1-ECE": makeStudents("ECE", 1, 5),
	}
	got := InterleaveRoundRobin(groups)
	for i := 1; i < len(got); i++ {
		if CohortKey(got[i]) == CohortKey(got[i-1]) {
			t.Fatalf("positions %d and %d share cohort %s with another bucket non-empty",
				i-1, i, CohortKey(got[i]))
		}
	}
}

func TestInterleaveUnavoidableTail(t *testing.T) {
	groups := map[string][]Student{
		"1-CSE": makeStudents("CSE", 1, 4),
		"1-ECE": makeStudents("ECE", 1, 1),
	}
	got := InterleaveRoundRobin(groups)
	if len(got) != 5 {
		t.Fatalf("expected 5 students, got %d", len(got))
	}
	// Once ECE drains the tail is all CSE. The first two alternate.
	if CohortKey(got[0]) != "1-CSE" || CohortKey(got[1]) != "1-ECE" {
		t.Fatalf("head not alternating: %s, %s", CohortKey(got[0]), CohortKey(got[1]))
	}
	for i := 2; i < 5; i++ {
		if CohortKey(got[i]) != "1-CSE" {
			t.Fatalf("position %d: expected drained tail of 1-CSE, got %s", i, CohortKey(got[i]))
		}
	}
}

func TestOrderStudentsGolden(t *testing.T) {
	students := make([]Student, 0, 8)
	for i := 1; i <= 8; i++ {
		students = append(students, Student{
			ID:     primitive.NewObjectID(),
			RollNo: "CSE-" + string(rune('0'+i)),
			Dept:   "CSE",
			Year:   1,
		})
	}

	// Cohort seed is "seed" + "-" + "1-CSE".
	got := OrderStudents(students, "seed")
	wantIdx := []int{3, 1, 5, 2, 8, 4, 6, 7}
	for i, idx := range wantIdx {
		if got[i].ID != students[idx-1].ID {
			t.Fatalf("position %d: got %s, want %s", i, got[i].RollNo, students[idx-1].RollNo)
		}
	}
}

func TestOrderStudentsCohortIsolation(t *testing.T) {
	cse := makeStudents("CSE", 1, 6)
	eceSmall := makeStudents("ECE", 1, 2)
	eceLarge := append([]Student{}, eceSmall...)
	eceLarge = append(eceLarge, makeStudents("ECE", 1, 4)...)

	orderA := OrderStudents(append(append([]Student{}, cse...), eceSmall...), "iso")
	orderB := OrderStudents(append(append([]Student{}, cse...), eceLarge...), "iso")

	extract := func(students []Student) []primitive.ObjectID {
		var ids []primitive.ObjectID
		for _, s := range students {
			if s.Dept == "CSE" {
				ids = append(ids, s.ID)
			}
		}
		return ids
	}
	a, b := extract(orderA), extract(orderB)
	if len(a) != len(b) {
		t.Fatalf("CSE count changed: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("CSE relative order changed at %d when ECE cohort grew", i)
		}
	}
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"R9", "R10", true},
		{"R10", "R9", false},
		{"R2", "R2", false},
		{"101", "102", true},
		{"A1", "B1", true},
		{"R09", "R9", false},
		{"R9", "R09", false},
		{"R1", "R1A", true},
		{"R1A", "R1", false},
	}
	for _, tt := range tests {
		if got := naturalLess(tt.a, tt.b); got != tt.want {
			t.Fatalf("naturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSortRooms(t *testing.T) {
	rooms := []Room{
		makeRoom("B", "101", 10, 2),
		makeRoom("A", "R10", 10, 2),
		makeRoom("A", "R9", 10, 2),
		makeRoom("A", "R2", 10, 2),
	}
	sorted := SortRooms(rooms)
	want := []string{"A/R2", "A/R9", "A/R10", "B/101"}
	for i, room := range sorted {
		if key := room.Block + "/" + room.RoomNo; key != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, key, want[i])
		}
	}
	if rooms[0].Block != "B" {
		t.Fatalf("SortRooms mutated its input")
	}
}

func TestTotalSeats(t *testing.T) {
	rooms := []Room{
		makeRoom("A", "1", 20, 2),
		makeRoom("A", "2", 10, 3),
		makeRoom("A", "3", 5, 1),
	}
	benches, seats := TotalSeats(rooms, ExamTypeMid)
	if benches != 35 || seats != 65 {
		t.Fatalf("MID: got %d benches, %d seats; want 35, 65", benches, seats)
	}
	benches, seats = TotalSeats(rooms, ExamTypeSem)
	if benches != 35 || seats != 35 {
		t.Fatalf("SEM: got %d benches, %d seats; want 35, 35", benches, seats)
	}
}

func TestSeatPositionsDensityAndOrder(t *testing.T) {
	wide := makeRoom("A", "1", 2, 3)
	narrow := makeRoom("A", "2", 2, 1)

	positions := SeatPositions([]Room{narrow, wide}, ExamTypeMid)
	// Room A/1 first: 2 benches x 2 seats (capped), then A/2: 2 benches x 1.
	if len(positions) != 6 {
		t.Fatalf("expected 6 MID positions, got %d", len(positions))
	}
	wantFirst := []struct {
		roomNo  string
		benchNo int
		seatNo  int
	}{
		{"1", 1, 1}, {"1", 1, 2}, {"1", 2, 1}, {"1", 2, 2}, {"2", 1, 1}, {"2", 2, 1},
	}
	for i, want := range wantFirst {
		got := positions[i]
		if got.RoomNo != want.roomNo || got.BenchNo != want.benchNo || got.SeatNo != want.seatNo {
			t.Fatalf("position %d: got %s/%d/%d, want %s/%d/%d",
				i, got.RoomNo, got.BenchNo, got.SeatNo, want.roomNo, want.benchNo, want.seatNo)
		}
	}

	positions = SeatPositions([]Room{narrow, wide}, ExamTypeSem)
	if len(positions) != 4 {
		t.Fatalf("expected 4 SEM positions, got %d", len(positions))
	}
	for _, pos := range positions {
		if pos.SeatNo != 1 {
			t.Fatalf("SEM position with seat %d in room %s", pos.SeatNo, pos.RoomNo)
		}
	}
}

func TestBuildAssignmentsNoDuplicates(t *testing.T) {
	students := append(makeStudents("CSE", 1, 50), makeStudents("ECE", 1, 50)...)
	students = append(students, makeStudents("MECH", 2, 50)...)
	rooms := []Room{
		makeRoom("A", "101", 20, 2),
		makeRoom("A", "102", 20, 2),
		makeRoom("B", "201", 20, 2),
		makeRoom("B", "202", 20, 2),
	}

	assignments := BuildAssignments(students, rooms, ExamTypeMid, "plan-seed")
	if len(assignments) != 150 {
		t.Fatalf("expected 150 assignments, got %d", len(assignments))
	}

	seats := make(map[string]bool)
	seated := make(map[primitive.ObjectID]bool)
	for _, a := range assignments {
		seatKey := fmt.Sprintf("%s/%d/%d", a.RoomID.Hex(), a.BenchNo, a.SeatNo)
		if seats[seatKey] {
			t.Fatalf("seat %s/%d/%d assigned twice", a.RoomID.Hex(), a.BenchNo, a.SeatNo)
		}
		seats[seatKey] = true
		if seated[a.StudentID] {
			t.Fatalf("student %s seated twice", a.StudentID.Hex())
		}
		seated[a.StudentID] = true
	}
}

func TestBuildAssignmentsDeterministic(t *testing.T) {
	students := append(makeStudents("CSE", 1, 10), makeStudents("ECE", 2, 10)...)
	rooms := []Room{makeRoom("A", "1", 15, 2)}

	first := BuildAssignments(students, rooms, ExamTypeMid, "fixed-seed")
	second := BuildAssignments(students, rooms, ExamTypeMid, "fixed-seed")
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("assignment %d differs between identical runs", i)
		}
	}

	other := BuildAssignments(students, rooms, ExamTypeMid, "other-seed")
	same := true
	for i := range first {
		if first[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical assignments")
	}
}

func TestBuildAssignmentsEmptyRoster(t *testing.T) {
	rooms := []Room{makeRoom("A", "1", 10, 2)}
	assignments := BuildAssignments(nil, rooms, ExamTypeMid, "seed")
	if len(assignments) != 0 {
		t.Fatalf("expected no assignments, got %d", len(assignments))
	}
}

func TestCheckCapacity(t *testing.T) {
	rooms := []Room{
		makeRoom("A", "101", 20, 2),
		makeRoom("A", "102", 20, 2),
		makeRoom("B", "201", 20, 2),
		makeRoom("B", "202", 20, 2),
	}

	if err := checkCapacity(makeStudents("CSE", 1, 160), rooms, ExamTypeMid); err != nil {
		t.Fatalf("160 students in 160 MID seats should fit: %v", err)
	}

	err := checkCapacity(makeStudents("CSE", 1, 161), rooms, ExamTypeMid)
	var capacityErr *CapacityError
	if !errors.As(err, &capacityErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capacityErr.TotalSeats != 160 || capacityErr.Deficit != 1 {
		t.Fatalf("got seats=%d deficit=%d, want 160, 1", capacityErr.TotalSeats, capacityErr.Deficit)
	}
	if capacityErr.NeededBenches != 81 || capacityErr.TotalBenches != 80 {
		t.Fatalf("got needed=%d have=%d, want 81, 80", capacityErr.NeededBenches, capacityErr.TotalBenches)
	}

	// SEM halves capacity: 80 seats for the same rooms.
	err = checkCapacity(makeStudents("CSE", 1, 81), rooms, ExamTypeSem)
	if !errors.As(err, &capacityErr) {
		t.Fatalf("expected SEM CapacityError, got %v", err)
	}
	if capacityErr.TotalSeats != 80 || capacityErr.NeededBenches != 81 {
		t.Fatalf("SEM: got seats=%d needed=%d, want 80, 81", capacityErr.TotalSeats, capacityErr.NeededBenches)
	}
}

func TestPerRoomInvigilators(t *testing.T) {
	if got := PerRoomInvigilators(ExamTypeMid); got != 2 {
		t.Fatalf("MID: got %d, want 2", got)
	}
	if got := PerRoomInvigilators(ExamTypeSem); got != 1 {
		t.Fatalf("SEM: got %d, want 1", got)
	}
}

func TestChunkInvigilators(t *testing.T) {
	rooms := []Room{
		makeRoom("A", "1", 10, 2),
		makeRoom("A", "2", 10, 2),
		makeRoom("B", "1", 10, 2),
	}
	faculty := make([]primitive.ObjectID, 6)
	for i := range faculty {
		faculty[i] = primitive.NewObjectID()
	}

	allocation := ChunkInvigilators(rooms, faculty, 2)
	if len(allocation) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(allocation))
	}
	used := make(map[primitive.ObjectID]bool)
	for i, roomAlloc := range allocation {
		if roomAlloc.RoomID != rooms[i].ID {
			t.Fatalf("room %d: allocation out of order", i)
		}
		if len(roomAlloc.FacultyProfileIDs) != 2 {
			t.Fatalf("room %d: got %d invigilators, want 2", i, len(roomAlloc.FacultyProfileIDs))
		}
		for _, id := range roomAlloc.FacultyProfileIDs {
			if used[id] {
				t.Fatalf("faculty %s assigned to two rooms", id.Hex())
			}
			used[id] = true
		}
	}
	if allocation[0].FacultyProfileIDs[0] != faculty[0] || allocation[2].FacultyProfileIDs[1] != faculty[5] {
		t.Fatalf("chunks not consecutive")
	}
}

func TestInvigilatorReplacementOmitsID(t *testing.T) {
	rooms := []Room{makeRoom("A", "1", 10, 2)}
	faculty := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	assignment := buildInvigilatorAssignment(primitive.NewObjectID(), 2, rooms, faculty)
	if !assignment.ID.IsZero() {
		t.Fatalf("replacement document carries _id %s", assignment.ID.Hex())
	}

	// Reassigning must replace the session's existing document. A serialized
	// _id would make the upsert alter the matched document's immutable _id
	// and fail every call after the first.
	raw, err := bson.Marshal(assignment)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, lookupErr := bson.Raw(raw).LookupErr("_id"); lookupErr == nil {
		t.Fatalf("replacement document serializes an _id")
	}
}
