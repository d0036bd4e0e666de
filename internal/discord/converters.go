package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/herald/internal/cmderr"
	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/internal/core"
)

// RegisterConverters adds the Discord-aware argument types to a registry.
func RegisterConverters(reg *convert.Registry) {
	reg.RegisterSimple("member", resolveMember)
}

// resolveMember turns a token into a *discordgo.Member. It accepts a
// mention, a raw user ID, or a username/nickname known to the guild state.
func resolveMember(arg string, ctx convert.Ctx) (any, error) {
	cc, ok := ctx.(*core.Context)
	if !ok {
		return nil, fmt.Errorf("member converter outside a message context")
	}
	msg := MessageOf(cc)
	if msg == nil {
		return nil, fmt.Errorf("member converter outside a message context")
	}
	guildID := cc.GuildID()
	if guildID == "" {
		return nil, cmderr.New("MEMBER_RESOLVE_not_found", arg)
	}

	if id := parseMention(arg); id != "" {
		if member := lookupMember(msg.Session, guildID, id); member != nil {
			return member, nil
		}
		return nil, cmderr.New("MEMBER_RESOLVE_not_found", arg)
	}

	if member := searchMemberByName(msg.Session, guildID, arg); member != nil {
		return member, nil
	}
	return nil, cmderr.New("MEMBER_RESOLVE_not_found", arg)
}

// parseMention extracts the user ID from <@id> or <@!id>, or returns the
// input when it is already a bare numeric ID.
func parseMention(arg string) string {
	id := arg
	if strings.HasPrefix(id, "<@") && strings.HasSuffix(id, ">") {
		id = strings.TrimSuffix(strings.TrimPrefix(id, "<@"), ">")
		id = strings.TrimPrefix(id, "!")
	}
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}

func lookupMember(s *discordgo.Session, guildID, userID string) *discordgo.Member {
	if member, err := s.State.Member(guildID, userID); err == nil && member != nil {
		return member
	}
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return nil
	}
	return member
}

func searchMemberByName(s *discordgo.Session, guildID, name string) *discordgo.Member {
	guild, err := s.State.Guild(guildID)
	if err != nil || guild == nil {
		return nil
	}
	lowered := strings.ToLower(name)
	for _, member := range guild.Members {
		if member.User == nil {
			continue
		}
		if strings.ToLower(member.User.Username) == lowered ||
			strings.ToLower(member.Nick) == lowered {
			return member
		}
	}
	return nil
}
