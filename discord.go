package main

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// DiscordChannel mirrors multiworld events into a Discord channel.
type DiscordChannel struct {
	session   *discordgo.Session
	channelID string
	cfg       *Config
}

func NewDiscordChannel(token, channelID string, cfg *Config) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discordgo session: %w", err)
	}

	return &DiscordChannel{
		session:   session,
		channelID: channelID,
		cfg:       cfg,
	}, nil
}

func (dc *DiscordChannel) Name() string { return "Discord" }

func (dc *DiscordChannel) Start(ctx context.Context) error {
	if err := dc.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	log.Printf("discord bot connected as %s", dc.session.State.User.Username)

	<-ctx.Done()
	dc.session.Close()
	return nil
}

func (dc *DiscordChannel) Send(ctx context.Context, event Event) error {
	if !dc.cfg.discordEventAllowed(event.Type) {
		return nil
	}

	msg := formatEvent(event)
	if msg == "" {
		return nil
	}

	_, err := dc.session.ChannelMessageSend(dc.channelID, msg)
	if err != nil {
		return fmt.Errorf("send to Discord: %w", err)
	}
	return nil
}

func (dc *DiscordChannel) Close() error {
	return dc.session.Close()
}

func formatEvent(e Event) string {
	switch e.Type {
	case EventItemReceived:
		if e.Field("item_name") == "" || e.Field("sending_player") == "" {
			return "🎁 " + e.Text
		}
		return fmt.Sprintf("🎁 **%s** received **%s** from %s",
			e.Field("receiving_player"), e.Field("item_name"), e.Field("sending_player"))
	case EventItemSent:
		if e.Field("item_name") == "" || e.Field("receiving_player") == "" {
			return "📤 " + e.Text
		}
		return fmt.Sprintf("📤 **%s** sent **%s** to %s",
			e.Field("sending_player"), e.Field("item_name"), e.Field("receiving_player"))
	case EventLocationChecked:
		if e.Field("location_name") == "" {
			return "✅ " + e.Text
		}
		return fmt.Sprintf("✅ **%s** checked %s", e.Field("player_name"), e.Field("location_name"))
	case EventPlayerJoined:
		return "➡️ " + e.Text
	case EventPlayerLeft:
		return "⬅️ " + e.Text
	case EventGoalCompleted:
		return fmt.Sprintf("🏆 **%s**", e.Text)
	case EventHint:
		return fmt.Sprintf("💡 %s", e.Text)
	case EventChat:
		return fmt.Sprintf("💬 **%s**: %s", e.Field("player_name"), e.Field("message"))
	case EventServerMessage:
		return fmt.Sprintf("📢 %s", e.Text)
	case EventRelease:
		return fmt.Sprintf("🎉 %s", e.Text)
	case EventCollect:
		return fmt.Sprintf("📦 %s", e.Text)
	case EventServerConnected:
		return fmt.Sprintf("🔌 %s", e.Text)
	case EventDisconnected:
		return fmt.Sprintf("🔌 %s", e.Text)

	default:
		return ""
	}
}
