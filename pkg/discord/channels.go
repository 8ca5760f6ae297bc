package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Session is the subset of *discordgo.Session used by the bot.
type Session interface {
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Session = (*discordgo.Session)(nil)

const (
	customerAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory |
		discordgo.PermissionAttachFiles |
		discordgo.PermissionEmbedLinks |
		discordgo.PermissionUseExternalEmojis
	customerDeny = discordgo.PermissionMentionEveryone

	staffAllow = customerAllow |
		discordgo.PermissionMentionEveryone |
		discordgo.PermissionManageMessages |
		discordgo.PermissionManageChannels
)

// TicketChannelSpec describes a private ticket channel.
type TicketChannelSpec struct {
	Name         string
	Topic        string
	ParentID     string
	CustomerID   string
	StaffRoleIDs []string
}

// ChannelService manages ticket channels and order messages in one guild.
type ChannelService struct {
	session Session
	guildID string
}

// NewChannelService creates a channel service for guildID.
func NewChannelService(session Session, guildID string) *ChannelService {
	return &ChannelService{
		session: session,
		guildID: guildID,
	}
}

// CreateTicketChannel creates a text channel hidden from @everyone and
// visible to the customer and the staff roles.
func (c *ChannelService) CreateTicketChannel(ctx context.Context, spec TicketChannelSpec) (*discordgo.Channel, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("ticket channel name is required")
	}

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// The @everyone role shares the guild ID.
			ID:   c.guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
	}
	if spec.CustomerID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    spec.CustomerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: customerAllow,
			Deny:  customerDeny,
		})
	}
	for _, roleID := range spec.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffAllow,
		})
	}

	channel, err := c.session.GuildChannelCreateComplex(c.guildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                spec.Topic,
		ParentID:             spec.ParentID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create channel %s: %w", spec.Name, err)
	}

	logrus.Infof("created ticket channel %s (%s) for user %s", channel.Name, channel.ID, spec.CustomerID)
	return channel, nil
}

// DeleteChannel deletes a channel.
func (c *ChannelService) DeleteChannel(ctx context.Context, channelID string) error {
	if _, err := c.session.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", channelID, err)
	}
	logrus.Infof("deleted channel %s", channelID)
	return nil
}

// ChannelExists reports whether channelID still exists in Discord.
func (c *ChannelService) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	_, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if isUnknownChannel(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up channel %s: %w", channelID, err)
}

func isUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// SendOrderRecap posts the order recap embed, pinging the given user and role mentions.
func (c *ChannelService) SendOrderRecap(ctx context.Context, channelID string, o *order.Order, mentions []string) (*discordgo.Message, error) {
	msg := &discordgo.MessageSend{
		Content: strings.Join(mentions, " "),
		Embeds:  []*discordgo.MessageEmbed{OrderRecapEmbed(o)},
	}
	m, err := c.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send order recap to %s: %w", channelID, err)
	}
	return m, nil
}

// SendOrderLog posts a short order summary to a staff log channel.
func (c *ChannelService) SendOrderLog(ctx context.Context, channelID string, o *order.Order, t *order.Ticket) (*discordgo.Message, error) {
	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{OrderLogEmbed(o, t)},
	}
	m, err := c.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send order log to %s: %w", channelID, err)
	}
	return m, nil
}

// DeleteMessage deletes one message from a channel.
func (c *ChannelService) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete message %s in %s: %w", messageID, channelID, err)
	}
	logrus.Infof("deleted message %s in channel %s", messageID, channelID)
	return nil
}

// SendPanel posts the public order panel.
func (c *ChannelService) SendPanel(ctx context.Context, channelID string) (*discordgo.Message, error) {
	m, err := c.session.ChannelMessageSendComplex(channelID, PanelMessage(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send order panel to %s: %w", channelID, err)
	}
	logrus.Infof("posted order panel in channel %s", channelID)
	return m, nil
}
