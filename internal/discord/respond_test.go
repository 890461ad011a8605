package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestRelativeTimestamp(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "<t:1785585600:R>", relativeTimestamp(at))
}

func TestRequesterIdentity(t *testing.T) {
	t.Run("guild member", func(t *testing.T) {
		i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: "1", Username: "alice"}},
		}}
		assert.Equal(t, "1", requesterID(i))
		assert.Equal(t, "alice", requesterName(i))
	})

	t.Run("direct message", func(t *testing.T) {
		i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			User: &discordgo.User{ID: "2", Username: "bob"},
		}}
		assert.Equal(t, "2", requesterID(i))
		assert.Equal(t, "bob", requesterName(i))
	})

	t.Run("missing user", func(t *testing.T) {
		i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}
		assert.Equal(t, "", requesterID(i))
		assert.Equal(t, "unknown", requesterName(i))
	})
}
