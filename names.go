package main

import "fmt"

// GamePackage is one game's slice of the data package: name→id tables as
// the server sends them.
type GamePackage struct {
	ItemNameToID     map[string]int64 `json:"item_name_to_id"`
	LocationNameToID map[string]int64 `json:"location_name_to_id"`
}

// NameTable caches id→name mappings for the current session. Players come
// from the connect-time roster; items and locations from the data package.
// It is only ever appended to and lives for the process lifetime.
type NameTable struct {
	players   map[int]string
	items     map[string]map[int64]string
	locations map[string]map[int64]string
}

func NewNameTable() *NameTable {
	return &NameTable{
		players:   make(map[int]string),
		items:     make(map[string]map[int64]string),
		locations: make(map[string]map[int64]string),
	}
}

// SetPlayer records one roster entry for the current session.
func (t *NameTable) SetPlayer(slot int, name string) {
	t.players[slot] = canonicalPlayerName(name)
}

// AddGame inverts one game's data-package tables into id→name form.
func (t *NameTable) AddGame(game string, pkg GamePackage) {
	items := t.items[game]
	if items == nil {
		items = make(map[int64]string, len(pkg.ItemNameToID))
		t.items[game] = items
	}
	for name, id := range pkg.ItemNameToID {
		items[id] = name
	}

	locations := t.locations[game]
	if locations == nil {
		locations = make(map[int64]string, len(pkg.LocationNameToID))
		t.locations[game] = locations
	}
	for name, id := range pkg.LocationNameToID {
		locations[id] = name
	}
}

// Games returns the names of games with loaded data-package tables.
func (t *NameTable) Games() []string {
	games := make([]string, 0, len(t.items))
	for game := range t.items {
		games = append(games, game)
	}
	return games
}

// ResolvePlayer returns the roster name for a slot, or "Player_{id}".
func (t *NameTable) ResolvePlayer(slot int) string {
	if name, ok := t.players[slot]; ok {
		return name
	}
	return fmt.Sprintf("Player_%d", slot)
}

// ResolveItem scans every known game's item table; the first table holding
// the id wins. Falls back to "Item_{id}".
func (t *NameTable) ResolveItem(id int64) string {
	for _, items := range t.items {
		if name, ok := items[id]; ok {
			return name
		}
	}
	return fmt.Sprintf("Item_%d", id)
}

// ResolveLocation is ResolveItem for locations, with "Location_{id}".
func (t *NameTable) ResolveLocation(id int64) string {
	for _, locations := range t.locations {
		if name, ok := locations[id]; ok {
			return name
		}
	}
	return fmt.Sprintf("Location_%d", id)
}
