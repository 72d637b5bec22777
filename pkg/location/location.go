package location

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultChance is the value every chance field starts with.
const DefaultChance = "0"

// Direction is one of the six directions a location can link through.
type Direction int

const (
	North Direction = iota
	East
	West
	South
	Up
	Down
)

// Directions lists every direction in the order the file format writes them.
var Directions = [...]Direction{North, East, West, South, Up, Down}

var directionNames = [...]string{"north", "east", "west", "south", "up", "down"}

var titleCaser = cases.Title(language.English)

// Key returns the single-letter key used in the connections object.
func (d Direction) Key() string {
	if !d.valid() {
		return ""
	}
	return directionNames[d][:1]
}

func (d Direction) String() string {
	if !d.valid() {
		return "unknown"
	}
	return directionNames[d]
}

// Label is the title-cased name shown next to a selector.
func (d Direction) Label() string {
	return titleCaser.String(d.String())
}

func (d Direction) valid() bool {
	return d >= North && d <= Down
}

// ParseDirection maps a connection key ("n", "W", ...) or a full name back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if strings.EqualFold(s, d.Key()) || strings.EqualFold(s, d.String()) {
			return d, true
		}
	}
	return 0, false
}

// Connections holds the neighbor id for each direction. An empty string means no link.
type Connections struct {
	North string `json:"n"`
	East  string `json:"e"`
	West  string `json:"w"` // json matching is case-insensitive, so older files using "W" still decode here
	South string `json:"s"`
	Up    string `json:"u"`
	Down  string `json:"d"`
}

// Get returns the neighbor id for d.
func (c Connections) Get(d Direction) string {
	switch d {
	case North:
		return c.North
	case East:
		return c.East
	case West:
		return c.West
	case South:
		return c.South
	case Up:
		return c.Up
	case Down:
		return c.Down
	}
	return ""
}

// Set links d to id.
func (c *Connections) Set(d Direction, id string) {
	switch d {
	case North:
		c.North = id
	case East:
		c.East = id
	case West:
		c.West = id
	case South:
		c.South = id
	case Up:
		c.Up = id
	case Down:
		c.Down = id
	}
}

// Record represents one place in the game world. The id is the key in the
// locations file and is not repeated inside the record.
type Record struct {
	ID                   string      `json:"-"`
	Image                string      `json:"img"`                  // Relative path into the image directory
	Connections          Connections `json:"connections"`          // Direction → Location ID
	Description          string      `json:"description"`          // Long-form text
	ShortDescription     string      `json:"shortDescription"`     // Short-form text
	Terrain              string      `json:"terrain"`              // e.g. "Forest", "Cave"
	MonsterChance        string      `json:"monsterChance"`        // Decimal integer in [0,100]
	RandomTreasureChance string      `json:"randomTreasureChance"` // Decimal integer in [0,100]
	DungeonChance        string      `json:"dungeonChance"`        // Decimal integer in [0,100]
}

// NewRecord returns a record with every field at its default.
func NewRecord(id string) Record {
	return Record{
		ID:                   id,
		MonsterChance:        DefaultChance,
		RandomTreasureChance: DefaultChance,
		DungeonChance:        DefaultChance,
	}
}

// KnownFields is the set of keys a record object may carry on disk.
var KnownFields = map[string]bool{
	"img":                  true,
	"image":                true,
	"connections":          true,
	"description":          true,
	"shortDescription":     true,
	"terrain":              true,
	"monsterChance":        true,
	"randomTreasureChance": true,
	"dungeonChance":        true,
}

// UnmarshalJSON fills missing fields with defaults and accepts "image" as an
// alias for "img".
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		ImageAlias *string `json:"image"`
	}{plain: (*plain)(r)}

	id := r.ID
	*r = NewRecord(id)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.Image == "" && aux.ImageAlias != nil {
		r.Image = *aux.ImageAlias
	}
	return nil
}

// References reports whether any direction of r links to id.
func (r Record) References(id string) bool {
	if id == "" {
		return false
	}
	for _, d := range Directions {
		if r.Connections.Get(d) == id {
			return true
		}
	}
	return false
}
