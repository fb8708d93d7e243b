package world

import (
	"fmt"
	"regexp"
	"strings"
)

// CoordinateKind tells what kind of game the player is connected to.
type CoordinateKind int

// The kinds of coordinate.
const (
	Singleplayer CoordinateKind = iota
	Multiplayer
	Realms
)

func (k CoordinateKind) String() string {
	switch k {
	case Singleplayer:
		return "singleplayer"
	case Multiplayer:
		return "multiplayer"
	case Realms:
		return "realms"
	default:
		panic(fmt.Sprintf("unknown coordinate kind %d", int(k)))
	}
}

// ParseCoordinateKind parses the String form of a CoordinateKind.
func ParseCoordinateKind(s string) (CoordinateKind, error) {
	switch strings.ToLower(s) {
	case "singleplayer":
		return Singleplayer, nil
	case "multiplayer":
		return Multiplayer, nil
	case "realms":
		return Realms, nil
	default:
		return 0, fmt.Errorf("unknown coordinate kind %q", s)
	}
}

// A Coordinate identifies the save file, server or realm the player is in.
type Coordinate struct {
	Kind CoordinateKind

	// ID is the save folder name, the server address or the realm id.
	ID string

	// Name is the human readable name of the save, server or realm.
	Name string
}

var unsafeIDChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

// SafeID returns an identifier usable as a bank ID, prefixed by the kind.
func (c Coordinate) SafeID() string {
	id := unsafeIDChars.ReplaceAllString(strings.ToLower(c.ID), "_")

	return c.Kind.String() + "-" + id
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.ID)
}
