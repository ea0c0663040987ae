package tag

import "testing"

func TestMatchesTag(t *testing.T) {
	cases := []struct {
		tag, parent Tag
		want        bool
	}{
		{GaitRunning, Gait, true},
		{GaitRunning, GaitRunning, true},
		{Gait, GaitRunning, false},
		{"Status.GaitX", Gait, false},
		{None, Gait, false},
		{GaitRunning, None, false},
	}
	for _, c := range cases {
		if got := c.tag.MatchesTag(c.parent); got != c.want {
			t.Fatalf("%q.MatchesTag(%q) = %v, want %v", c.tag, c.parent, got, c.want)
		}
	}
}

func TestParentAndLeaf(t *testing.T) {
	if p := StanceCrouching.Parent(); p != Stance {
		t.Fatalf("expected parent %q, got %q", Stance, p)
	}
	if l := StanceCrouching.Leaf(); l != "Crouching" {
		t.Fatalf("expected leaf Crouching, got %q", l)
	}
	if p := Tag("Root").Parent(); p != None {
		t.Fatalf("expected root tag to have no parent, got %q", p)
	}
}
