package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Player is a connected player as reported by the game server console.
type Player struct {
	Slot int
	Name string
}

var playerLine = regexp.MustCompile(`(?m)^(\d+)\. ([^,]+), \w+`)

// ParsePlayers extracts the player list from a ListPlayers console reply.
// An empty slice means no players are connected.
func ParsePlayers(raw string) []Player {
	matches := playerLine.FindAllStringSubmatch(raw, -1)
	players := make([]Player, 0, len(matches))
	for _, m := range matches {
		slot, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		players = append(players, Player{Slot: slot, Name: strings.TrimSpace(m[2])})
	}
	return players
}
