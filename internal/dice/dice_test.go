package dice

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input        string
		wantCount    int
		wantSides    int
		wantModifier int
		wantErr      bool
	}{
		{"2d6", 2, 6, 0, false},
		{"d20", 1, 20, 0, false},
		{"3d8+5", 3, 8, 5, false},
		{"1d4-2", 1, 4, -2, false},
		{"  2D6 ", 2, 6, 0, false},
		{"", 0, 0, 0, true},
		{"abc", 0, 0, 0, true},
		{"2d", 0, 0, 0, true},
		{"0d6", 0, 0, 0, true},
		{"2d1", 0, 0, 0, true},
		{"101d6", 0, 0, 0, true},
		{"2d1001", 0, 0, 0, true},
		{"2d6+", 0, 0, 0, true},
	}

	for _, tt := range tests {
		count, sides, modifier, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected an error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if count != tt.wantCount || sides != tt.wantSides || modifier != tt.wantModifier {
			t.Errorf("Parse(%q) = (%d, %d, %d), want (%d, %d, %d)",
				tt.input, count, sides, modifier, tt.wantCount, tt.wantSides, tt.wantModifier)
		}
	}
}

func TestNewRollBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		r, err := New("4d6+3")
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if len(r.Rolls) != 4 {
			t.Fatalf("expected 4 rolls, got %d", len(r.Rolls))
		}
		sum := r.Modifier
		for _, die := range r.Rolls {
			if die < 1 || die > 6 {
				t.Fatalf("die %d out of range for d6", die)
			}
			sum += die
		}
		if r.Total != sum {
			t.Errorf("Total = %d, want %d", r.Total, sum)
		}
		if r.Total < 7 || r.Total > 27 {
			t.Errorf("Total %d out of range for 4d6+3", r.Total)
		}
	}
}

func TestNewInvalidNotation(t *testing.T) {
	if _, err := New("not dice"); err == nil {
		t.Error("New() expected an error for invalid notation")
	}
}
