package main

import "testing"

func TestResolvePlayerFallback(t *testing.T) {
	names := NewNameTable()
	if got := names.ResolvePlayer(3); got != "Player_3" {
		t.Fatalf("ResolvePlayer(3) = %q, want Player_3", got)
	}

	names.SetPlayer(3, "Alice")
	if got := names.ResolvePlayer(3); got != "Alice" {
		t.Fatalf("ResolvePlayer(3) = %q, want Alice", got)
	}
}

func TestSetPlayerCanonicalizes(t *testing.T) {
	names := NewNameTable()
	names.SetPlayer(1, "GuvnahBRC__Team__1__viewing_Bomb_Rush_Cyberfunk")
	if got := names.ResolvePlayer(1); got != "GuvnahBRC" {
		t.Fatalf("ResolvePlayer(1) = %q, want GuvnahBRC", got)
	}
}

func TestResolveItemFallbackThenDataPackage(t *testing.T) {
	names := NewNameTable()
	if got := names.ResolveItem(42); got != "Item_42" {
		t.Fatalf("ResolveItem(42) = %q, want Item_42", got)
	}

	names.AddGame("A Link to the Past", GamePackage{
		ItemNameToID:     map[string]int64{"Bow": 42},
		LocationNameToID: map[string]int64{"Kakariko Well": 7},
	})

	if got := names.ResolveItem(42); got != "Bow" {
		t.Fatalf("ResolveItem(42) = %q, want Bow", got)
	}
	if got := names.ResolveLocation(7); got != "Kakariko Well" {
		t.Fatalf("ResolveLocation(7) = %q, want Kakariko Well", got)
	}
	if got := names.ResolveLocation(8); got != "Location_8" {
		t.Fatalf("ResolveLocation(8) = %q, want Location_8", got)
	}
}

func TestResolveAcrossGames(t *testing.T) {
	names := NewNameTable()
	names.AddGame("Game A", GamePackage{ItemNameToID: map[string]int64{"Sword": 1}})
	names.AddGame("Game B", GamePackage{ItemNameToID: map[string]int64{"Shield": 2}})

	if got := names.ResolveItem(1); got != "Sword" {
		t.Fatalf("ResolveItem(1) = %q, want Sword", got)
	}
	if got := names.ResolveItem(2); got != "Shield" {
		t.Fatalf("ResolveItem(2) = %q, want Shield", got)
	}
	if got := len(names.Games()); got != 2 {
		t.Fatalf("Games() has %d entries, want 2", got)
	}
}
