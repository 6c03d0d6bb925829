package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", "vimmaster") || !m.Enabled("c", "vimmaster") || !m.Enabled("e", "vimmaster") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", "vimmaster") || m.Enabled("d", "vimmaster") || m.Enabled("f", "vimmaster") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if !m.Enabled("a", "") {
		t.Fatal("boolean flags do not depend on the subject")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	if !m.Enabled("always", "vimmaster") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "vimmaster") {
		t.Fatal("0% rollout should always be disabled")
	}
	if m.Enabled("junk", "vimmaster") {
		t.Fatal("malformed percentage should be disabled")
	}

	first := m.Enabled("canary", "neovim_fan")
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", "  NEOVIM_FAN "); got != first {
			t.Fatal("rollout evaluation must be deterministic per normalized subject")
		}
	}

	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a subject")
	}
}

func TestEnabled_NilAndUnknown(t *testing.T) {
	var m *Manager
	if m.Enabled("x", "a") {
		t.Fatal("nil manager must report disabled")
	}

	m = NewManager("x=off")
	if m.Enabled("missing", "a") {
		t.Fatal("unknown flags are disabled")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot("yourname")
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap["x"] || snap["z"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}
