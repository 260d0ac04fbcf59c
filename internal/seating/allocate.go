package seating

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeatPosition is one physical seat slot: room, bench, seat.
type SeatPosition struct {
	RoomID  primitive.ObjectID
	Block   string
	RoomNo  string
	BenchNo int
	SeatNo  int
}

// CohortKey returns the grouping key for a student. Students sharing a key
// are spread apart by the interleaver.
func CohortKey(s Student) string {
	return fmt.Sprintf("%d-%s", s.Year, s.Dept)
}

// GroupByYearDept partitions students into cohort buckets keyed by
// (year, department). Bucket order follows input order.
func GroupByYearDept(students []Student) map[string][]Student {
	groups := make(map[string][]Student)
	for _, student := range students {
		key := CohortKey(student)
		groups[key] = append(groups[key], student)
	}
	return groups
}

// InterleaveRoundRobin merges cohort buckets into a single ordering by
// repeatedly taking the next student from each non-empty bucket, iterating
// cohort keys in sorted order. Consecutive output positions only share a
// cohort once every other bucket has drained.
func InterleaveRoundRobin(groups map[string][]Student) []Student {
	keys := make([]string, 0, len(groups))
	remaining := 0
	for key, bucket := range groups {
		keys = append(keys, key)
		remaining += len(bucket)
	}
	sort.Strings(keys)

	offsets := make([]int, len(keys))
	result := make([]Student, 0, remaining)
	for remaining > 0 {
		for i, key := range keys {
			bucket := groups[key]
			if offsets[i] < len(bucket) {
				result = append(result, bucket[offsets[i]])
				offsets[i]++
				remaining--
			}
		}
	}
	return result
}

// OrderStudents produces the final seating order for a plan: cohorts are
// shuffled independently with seeds derived from the plan seed and the cohort
// key, then interleaved. Reordering one cohort's membership never perturbs
// another's stream.
func OrderStudents(students []Student, seed string) []Student {
	grouped := GroupByYearDept(students)
	shuffled := make(map[string][]Student, len(grouped))
	for key, cohort := range grouped {
		shuffled[key] = SeededShuffle(cohort, seed+"-"+key)
	}
	return InterleaveRoundRobin(shuffled)
}

// seatsPerBenchFor returns the seating density for an exam type. MID exams
// allow bench sharing up to two students; SEM exams seat one per bench.
func seatsPerBenchFor(examType string, room Room) int {
	if examType == ExamTypeMid {
		if room.SeatsPerBench < 2 {
			return room.SeatsPerBench
		}
		return 2
	}
	return 1
}

// TotalSeats computes the bench and seat capacity of the given rooms under
// the exam type's density.
func TotalSeats(rooms []Room, examType string) (totalBenches, totalSeats int) {
	for _, room := range rooms {
		totalBenches += room.Benches
		totalSeats += room.Benches * seatsPerBenchFor(examType, room)
	}
	return totalBenches, totalSeats
}

// SortRooms returns the rooms in their stable total order: block
// lexicographic, then room number natural-numeric.
func SortRooms(rooms []Room) []Room {
	sorted := make([]Room, len(rooms))
	copy(sorted, rooms)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Block != sorted[j].Block {
			return sorted[i].Block < sorted[j].Block
		}
		return naturalLess(sorted[i].RoomNo, sorted[j].RoomNo)
	})
	return sorted
}

// naturalLess compares strings with embedded digit runs numerically, so
// "R9" sorts before "R10".
func naturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			si, sj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[si:i], "0")
			nb := strings.TrimLeft(b[sj:j], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if a[i] != b[j] {
			return a[i] < b[j]
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// SeatPositions enumerates every seat slot across the rooms in room total
// order, bench ascending then seat ascending, at the exam type's density.
func SeatPositions(rooms []Room, examType string) []SeatPosition {
	ordered := SortRooms(rooms)
	var positions []SeatPosition
	for _, room := range ordered {
		density := seatsPerBenchFor(examType, room)
		for benchNo := 1; benchNo <= room.Benches; benchNo++ {
			for seatNo := 1; seatNo <= density; seatNo++ {
				positions = append(positions, SeatPosition{
					RoomID:  room.ID,
					Block:   room.Block,
					RoomNo:  room.RoomNo,
					BenchNo: benchNo,
					SeatNo:  seatNo,
				})
			}
		}
	}
	return positions
}

// BuildAssignments zips the interleaved student ordering with the seat
// ordering index-for-index. Surplus seats stay unused; the caller has already
// verified capacity.
func BuildAssignments(students []Student, rooms []Room, examType, seed string) []SeatingAssignment {
	ordered := OrderStudents(students, seed)
	positions := SeatPositions(rooms, examType)
	if len(positions) > len(ordered) {
		positions = positions[:len(ordered)]
	}

	assignments := make([]SeatingAssignment, 0, len(ordered))
	for i, student := range ordered {
		assignments = append(assignments, SeatingAssignment{
			StudentID: student.ID,
			RoomID:    positions[i].RoomID,
			BenchNo:   positions[i].BenchNo,
			SeatNo:    positions[i].SeatNo,
		})
	}
	return assignments
}

// PerRoomInvigilators returns the staffing requirement per room for an exam
// type: two for MID, one for SEM.
func PerRoomInvigilators(examType string) int {
	if examType == ExamTypeMid {
		return 2
	}
	return 1
}

// ChunkInvigilators walks the rooms in order and assigns perRoom consecutive
// entries from the shuffled faculty slice to each. faculty must hold at least
// len(rooms)*perRoom entries.
func ChunkInvigilators(rooms []Room, faculty []primitive.ObjectID, perRoom int) []RoomInvigilators {
	allocation := make([]RoomInvigilators, 0, len(rooms))
	for i, room := range rooms {
		start := i * perRoom
		ids := make([]primitive.ObjectID, perRoom)
		copy(ids, faculty[start:start+perRoom])
		allocation = append(allocation, RoomInvigilators{RoomID: room.ID, FacultyProfileIDs: ids})
	}
	return allocation
}
