package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/herald/internal/core"
)

// GuildOwnerAuth passes only for the guild owner.
func GuildOwnerAuth() *core.Auth {
	return core.NewAuth("guild_owner", func(ctx *core.Context) bool {
		msg := MessageOf(ctx)
		if msg == nil || ctx.GuildID() == "" {
			return false
		}
		guild := guildOf(msg.Session, ctx.GuildID())
		return guild != nil && guild.OwnerID == ctx.AuthorID()
	})
}

// GuildAdminAuth passes for the guild owner and for members holding a role
// with the Administrator permission.
func GuildAdminAuth() *core.Auth {
	return core.NewAuth("guild_admin", func(ctx *core.Context) bool {
		return hasPermission(ctx, discordgo.PermissionAdministrator)
	})
}

// GuildModAuth passes for members who can manage messages, and for anyone
// GuildAdminAuth would pass.
func GuildModAuth() *core.Auth {
	return core.NewAuth("guild_mod", func(ctx *core.Context) bool {
		return hasPermission(ctx, discordgo.PermissionManageMessages|discordgo.PermissionAdministrator)
	})
}

// hasPermission reports whether the author holds any of the wanted
// permission bits in the guild, or owns the guild outright.
func hasPermission(ctx *core.Context, wanted int64) bool {
	msg := MessageOf(ctx)
	if msg == nil || ctx.GuildID() == "" {
		return false
	}
	s := msg.Session

	guild := guildOf(s, ctx.GuildID())
	if guild == nil {
		return false
	}
	if guild.OwnerID == ctx.AuthorID() {
		return true
	}

	member := lookupMember(s, ctx.GuildID(), ctx.AuthorID())
	if member == nil {
		return false
	}
	for _, roleID := range member.Roles {
		if role, _ := s.State.Role(guild.ID, roleID); role != nil {
			if role.Permissions&wanted != 0 {
				return true
			}
		}
	}
	return false
}

func guildOf(s *discordgo.Session, guildID string) *discordgo.Guild {
	guild, err := s.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, err = s.Guild(guildID)
		if err != nil {
			return nil
		}
	}
	return guild
}
