package code

import "testing"

func TestNewRoom(t *testing.T) {
	c := NewRoom()
	if len(c) != RoomLength {
		t.Errorf("wrong length expected: %d got %d", RoomLength, len(c))
	}
	if _, ok := NormalizeRoom(c); !ok {
		t.Errorf("generated room code %q fails its own format", c)
	}
}

func TestNewSave(t *testing.T) {
	c := NewSave()
	if len(c) != SaveLength {
		t.Errorf("wrong length expected: %d got %d", SaveLength, len(c))
	}
	if _, ok := NormalizeSave(c); !ok {
		t.Errorf("generated save code %q fails its own format", c)
	}
}

func TestUniqueRoomAvoidsTaken(t *testing.T) {
	taken := map[string]bool{}
	for i := 0; i < 200; i++ {
		c := UniqueRoom(func(s string) bool { return taken[s] })
		if taken[c] {
			t.Fatalf("code %q handed out twice", c)
		}
		taken[c] = true
	}
}

func TestNormalizeRoom(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"4821", true},
		{" 4821 ", true},
		{"482", false},
		{"48211", false},
		{"48a1", false},
		{"", false},
		{"абвг", false},
	}
	for _, c := range cases {
		if _, ok := NormalizeRoom(c.in); ok != c.ok {
			t.Errorf("NormalizeRoom(%q) ok=%v want %v", c.in, ok, c.ok)
		}
	}
}
