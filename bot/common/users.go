package common

import (
	"github.com/bwmarrin/discordgo"
)

// IsAuthorizedAdmin reports whether the caller may run admin commands.
// The guild owner and anyone invoking from the configured admin channel
// are always authorized; members with the Administrator permission are
// allowed as well.
func IsAuthorizedAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, adminChannelID string) bool {
	if i.Member == nil || i.Member.User == nil {
		return false
	}
	if adminChannelID != "" && i.ChannelID == adminChannelID {
		return true
	}
	if guild, err := s.State.Guild(i.GuildID); err == nil && guild.OwnerID == i.Member.User.ID {
		return true
	}
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}
