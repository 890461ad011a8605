package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlayers(t *testing.T) {
	t.Run("parses the console listing", func(t *testing.T) {
		raw := "0. Alice, 0002f583a2b34c669d93f172f6f63b7e\n" +
			"1. Bob The Builder, 000a9c2b84f44f669d93f172f6f63b7e\n" +
			"5. Carol, 000b1d3c95e55a779e04f283f7f74c8f\n"

		players := ParsePlayers(raw)
		require.Len(t, players, 3)
		assert.Equal(t, Player{Slot: 0, Name: "Alice"}, players[0])
		assert.Equal(t, Player{Slot: 1, Name: "Bob The Builder"}, players[1])
		assert.Equal(t, Player{Slot: 5, Name: "Carol"}, players[2])
	})

	t.Run("ignores lines that are not player entries", func(t *testing.T) {
		raw := "Server received, But no response!!\nNo Players Connected\n"
		assert.Empty(t, ParsePlayers(raw))
	})

	t.Run("empty reply yields no players", func(t *testing.T) {
		assert.Empty(t, ParsePlayers(""))
	})
}
