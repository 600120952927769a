package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"rumia/bot/automod"
	"rumia/bot/gamesession"
	"rumia/bot/voice"
	"rumia/config"
	"rumia/events"
	"rumia/service"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	config     *config.Config
	session    *discordgo.Session
	dispatcher *Dispatcher
	detector   *automod.Detector
	sessions   *gamesession.Manager
	voice      *voice.Manager
	settings   service.GuildSettingsService
	eventBus   *events.Bus
}

func New(cfg *config.Config, dispatcher *Dispatcher, sessions *gamesession.Manager, settings service.GuildSettingsService, moderation service.ModerationService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	bot := &Bot{
		config:     cfg,
		session:    dg,
		dispatcher: dispatcher,
		sessions:   sessions,
		settings:   settings,
		eventBus:   eventBus,
	}
	bot.detector = automod.NewDetector(settings, moderation, bot)
	bot.voice = voice.NewManager(
		voice.NewDiscordConnector(dg),
		&voice.YtdlpResolver{},
		eventBus,
		cfg.IdleDisconnectGrace,
		cfg.DefaultVolume,
	)
	bot.voice.Listeners = bot.countListeners

	dg.AddHandler(bot.handleInteraction)
	dg.AddHandler(bot.handleMessage)
	dg.AddHandler(bot.handleVoiceState)

	eventBus.Subscribe(events.EventTypeModerationLog, bot.handleModerationLog)

	return bot, nil
}

// Session exposes the underlying gateway session for feature wiring.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Voice exposes the guild audio manager for feature wiring.
func (b *Bot) Voice() *voice.Manager {
	return b.voice
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}
	log.WithField("user", b.session.State.User.Username).Info("Bot connected")
	return nil
}

func (b *Bot) Close() error {
	b.voice.Shutdown()
	return b.session.Close()
}

// registerCommands bulk-overwrites the application's command set so removed
// commands disappear and changed definitions take effect in one call.
func (b *Bot) registerCommands() error {
	defs := b.dispatcher.Definitions()
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, defs)
	if err != nil {
		return fmt.Errorf("failed to register %d commands: %w", len(defs), err)
	}
	log.WithField("count", len(defs)).Info("Slash commands registered")
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatcher.DispatchCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		b.dispatcher.DispatchComponent(ctx, s, i)
	}
}

// handleMessage feeds guild messages through automod first, then offers
// survivors to any game session awaiting the author's answer.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"guild_id": m.GuildID,
				"panic":    r,
			}).Error("Message handler panicked")
		}
	}()

	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	msg := &automod.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
		Sent:      time.Now(),
	}
	if m.Member != nil {
		msg.RoleIDs = m.Member.Roles
	}
	if ts := m.Timestamp; !ts.IsZero() {
		msg.Sent = ts
	}

	result, err := b.detector.Inspect(context.Background(), msg)
	if err != nil {
		log.WithError(err).WithField("guild_id", m.GuildID).Error("automod inspection failed")
	}
	if result != nil {
		return
	}

	b.sessions.Resolve(gamesession.Key{UserID: m.Author.ID, ChannelID: m.ChannelID}, m.Content)
}

func (b *Bot) handleVoiceState(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"guild_id": v.GuildID,
				"panic":    r,
			}).Error("Voice state handler panicked")
		}
	}()

	if v.UserID == s.State.User.ID {
		return
	}
	b.voice.HandleListenerChange(v.GuildID, b.countListeners(v.GuildID))
}

// countListeners counts the humans sharing the bot's voice channel in a guild.
func (b *Bot) countListeners(guildID string) int {
	player, ok := b.voice.Player(guildID)
	if !ok {
		return 0
	}
	guild, err := b.session.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != player.ChannelID() || vs.UserID == b.session.State.User.ID {
			continue
		}
		if member, err := b.session.State.Member(guildID, vs.UserID); err == nil && member.User != nil && member.User.Bot {
			continue
		}
		count++
	}
	return count
}

// handleModerationLog posts moderation events to the guild's configured log
// channel, if any.
func (b *Bot) handleModerationLog(ctx context.Context, event events.Event) {
	logEvent, ok := event.(events.ModerationLogEvent)
	if !ok {
		return
	}

	settings, err := b.settings.Get(ctx, logEvent.GuildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", logEvent.GuildID).Error("failed to load settings for moderation log")
		return
	}
	if settings.LogChannelID == nil {
		return
	}

	channelID := strconv.FormatInt(*settings.LogChannelID, 10)
	embed := &discordgo.MessageEmbed{
		Title:       logEvent.Action,
		Description: logEvent.Details,
		Color:       logEvent.Color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("failed to post moderation log")
	}
}

// DeleteMessage implements automod.Actions.
func (b *Bot) DeleteMessage(channelID, messageID string) error {
	return b.session.ChannelMessageDelete(channelID, messageID)
}

// MuteUser implements automod.Actions with a member timeout.
func (b *Bot) MuteUser(guildID, userID string, duration time.Duration) error {
	until := time.Now().Add(duration)
	return b.session.GuildMemberTimeout(guildID, userID, &until)
}

// Notify implements automod.Actions. A positive expiry schedules the
// notice for deletion so warnings do not pile up in busy channels.
func (b *Bot) Notify(channelID, content string, expiry time.Duration) error {
	msg, err := b.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return err
	}
	if expiry > 0 {
		time.AfterFunc(expiry, func() {
			if err := b.session.ChannelMessageDelete(channelID, msg.ID); err != nil {
				log.WithError(err).Debug("failed to delete expired automod notice")
			}
		})
	}
	return nil
}
