package catalog

import (
	"testing"

	"github.com/claude/wodcoach/internal/models"
)

func testCatalog() *Catalog {
	return New([]models.Movement{
		{ID: 1, CanonicalName: "Thrusters", Aliases: []string{"Thruster"}, Category: models.CategoryWeightlifting, IsWeighted: true},
		{ID: 2, CanonicalName: "Pull-ups", Aliases: []string{"Pull up", "Pullups", "Chin-ups"}, Category: models.CategoryGymnastics},
		{ID: 3, CanonicalName: "Handstand Push-ups", Aliases: []string{"HSPU"}, Category: models.CategoryGymnastics},
		{ID: 4, CanonicalName: "Dumbbell Snatch", Aliases: []string{"DB Snatch"}, Category: models.CategoryWeightlifting, IsWeighted: true},
		{ID: 5, CanonicalName: "Run", Aliases: []string{"Running"}, Category: models.CategoryCardio},
		{ID: 6, CanonicalName: "Row", Aliases: []string{"Rowing", "C2 Row"}, Category: models.CategoryCardio},
		{ID: 7, CanonicalName: "Assault Bike", Aliases: []string{"Air Bike"}, Category: models.CategoryCardio},
		{ID: 8, CanonicalName: "Burpees", Category: models.CategoryBodyweight},
	})
}

func TestFind(t *testing.T) {
	c := testCatalog()
	tests := []struct {
		input  string
		wantID int64
	}{
		{"Thrusters", 1},
		{"thruster", 1},
		{"Pull-ups", 2},
		{"pull ups", 2},
		{"PULLUPS", 2},
		{"chin-ups", 2},
		{"hspu", 3},
		{"handstand pushups", 3},
		{"db snatches", 4},
		{"dumbbell snatch", 4},
		{"Rowing", 6},
		{"air bike", 7},
		{"Burpee", 8},
	}
	for _, tt := range tests {
		m, ok := c.Find(tt.input)
		if !ok {
			t.Errorf("Find(%q) found nothing, want ID %d", tt.input, tt.wantID)
			continue
		}
		if m.ID != tt.wantID {
			t.Errorf("Find(%q) = %d (%s), want %d", tt.input, m.ID, m.CanonicalName, tt.wantID)
		}
	}
}

func TestFindMiss(t *testing.T) {
	c := testCatalog()
	for _, input := range []string{"", "   ", "Thrustres", "wall balls"} {
		if m, ok := c.Find(input); ok {
			t.Errorf("Find(%q) = %s, want miss", input, m.CanonicalName)
		}
	}
}

// TestNamesOrder verifies Names keeps catalog order so suggestion ties stay
// deterministic.
func TestNamesOrder(t *testing.T) {
	names := testCatalog().Names()
	if len(names) != 8 || names[0] != "Thrusters" || names[7] != "Burpees" {
		t.Errorf("Names = %v", names)
	}
}

func TestByID(t *testing.T) {
	c := testCatalog()
	if m, ok := c.ByID(5); !ok || m.CanonicalName != "Run" {
		t.Errorf("ByID(5) = %v, %v", m.CanonicalName, ok)
	}
	if _, ok := c.ByID(99); ok {
		t.Error("ByID(99) found a movement")
	}
}

func TestKindOf(t *testing.T) {
	c := testCatalog()
	tests := []struct {
		name string
		want CardioKind
	}{
		{"Run", CardioRunning},
		{"Row", CardioRowing},
		{"Assault Bike", CardioOther},
		{"Thrusters", CardioOther},
	}
	for _, tt := range tests {
		m, ok := c.Find(tt.name)
		if !ok {
			t.Fatalf("Find(%q) failed", tt.name)
		}
		if got := KindOf(m); got != tt.want {
			t.Errorf("KindOf(%s) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
