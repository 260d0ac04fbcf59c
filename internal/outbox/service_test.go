package outbox

import "testing"

func TestRenderSeatEmail(t *testing.T) {
	subject, body := renderSeatEmail(2, "A", "R10", 7, 1)
	if subject != "Seating Allocation - Day 2" {
		t.Fatalf("subject = %q", subject)
	}
	if body != "Your seat: Day 2, Block A, Room R10, Bench 7, Seat 1" {
		t.Fatalf("body = %q", body)
	}
}
