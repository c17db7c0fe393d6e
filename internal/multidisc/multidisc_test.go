package multidisc

import (
	"reflect"
	"testing"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		marked bool
	}{
		{"Xenogears (USA) (Disc 1).chd", "Xenogears (USA)", true},
		{"Xenogears (USA)(disc 2).chd", "Xenogears (USA)", true},
		{"Final Fantasy VII (DISC 3).chd", "Final Fantasy VII", true},
		{"Metal Gear Solid.chd", "", false},
		{"(Disc 1).chd", "", true},
		{"Riven (Disc 1) (Disc 2).chd", "Riven", true},
		{"Pokémon (Disc 1).chd", "Pokémon", true},
	}
	for _, tc := range cases {
		got, marked := Canonical(tc.in)
		if got != tc.want || marked != tc.marked {
			t.Errorf("Canonical(%q) = %q,%v want %q,%v", tc.in, got, marked, tc.want, tc.marked)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"  Xenogears (USA) ", "Pokémon", "", "\tÅ\n", "Metal Gear Solid"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestGroupOrdersMembersVersionAware(t *testing.T) {
	paths := []string{
		"/lib/Game (Disc 10).chd",
		"/lib/Game (Disc 2).chd",
		"/lib/Game (Disc 1).chd",
		"/lib/Alpha (Disc 1).chd",
		"/lib/Metal Gear Solid.chd",
		"/lib/ (Disc 1).chd",
	}
	games, empty := Group(paths)
	if len(empty) != 1 || empty[0].Path != "/lib/ (Disc 1).chd" {
		t.Fatalf("unexpected empty-name files %+v", empty)
	}
	if len(games) != 2 || games[0].Canonical != "Alpha" || games[1].Canonical != "Game" {
		t.Fatalf("unexpected games %+v", games)
	}
	var names []string
	for _, m := range games[1].Members {
		names = append(names, m.Name)
	}
	want := []string{"Game (Disc 1).chd", "Game (Disc 2).chd", "Game (Disc 10).chd"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("members = %v, want %v", names, want)
	}
}

func TestGameNames(t *testing.T) {
	game := Game{Canonical: "Xenogears (USA)"}
	if got := game.HiddenDir(); got != ".Xenogears_USA_" {
		t.Fatalf("HiddenDir = %q", got)
	}
	if got := game.PlaylistName(); got != "Xenogears_USA_.m3u" {
		t.Fatalf("PlaylistName = %q", got)
	}
}
