package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Embed accent colors shared across features
const (
	ColorMain    = 0x9b59b6
	ColorSuccess = 0x2ecc71
	ColorError   = 0xe74c3c
	ColorWarn    = 0xf1c40f
)

// FormatYen formats an amount with thousand separators and a yen sign
func FormatYen(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := strconv.FormatInt(amount, 10)
	n := len(str)

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	result.WriteRune('¥')
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// ParseUserID converts a platform string ID to int64
func ParseUserID(id string) (int64, error) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID %q: %w", id, err)
	}
	return parsed, nil
}

// InteractionUser returns the invoking user for both guild and DM interactions
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// DisplayName returns a member's server nickname, falling back to the username
func DisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member.Nick != "" {
		return member.Nick
	}
	user, err := s.User(userID)
	if err != nil {
		return userID
	}
	return user.Username
}
