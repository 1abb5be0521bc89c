package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/pkg/retrylimit"
)

// messageAPI is the part of *discordgo.Session the notifier needs.
type messageAPI interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier implements lock.NotificationSink with plain channel messages
// and an optional unlock button.
type Notifier struct {
	api         messageAPI
	guardedName string
	limiter     *retrylimit.AdaptiveLimiter
}

// NewNotifier renders notices naming the guarded bot guardedName.
func NewNotifier(s *discordgo.Session, guardedName string) *Notifier {
	return newNotifier(s, guardedName)
}

func newNotifier(api messageAPI, guardedName string) *Notifier {
	return &Notifier{
		api:         api,
		guardedName: guardedName,
		limiter:     retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
	}
}

func (n *Notifier) Post(ctx context.Context, channelID string, notice lock.Notice) (lock.MessageRef, error) {
	r := n.Render(notice)
	send := &discordgo.MessageSend{
		Content:         r.Content,
		Components:      r.Components,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}

	var msg *discordgo.Message
	err := n.retry(ctx, func() (err error) {
		msg, err = n.api.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return lock.MessageRef{}, fmt.Errorf("post notice in %s: %w", channelID, err)
	}
	return lock.MessageRef{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (n *Notifier) Edit(ctx context.Context, ref lock.MessageRef, notice lock.Notice) error {
	r := n.Render(notice)
	components := r.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	edit := &discordgo.MessageEdit{
		ID:         ref.MessageID,
		Channel:    ref.ChannelID,
		Components: &components,
	}
	if !r.KeepContent {
		content := r.Content
		edit.Content = &content
	}

	err := n.retry(ctx, func() error {
		_, err := n.api.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("edit notice %s: %w", ref.MessageID, err)
	}
	return nil
}

func (n *Notifier) retry(ctx context.Context, call func() error) error {
	return retrylimit.WithRetryConfig(ctx, func() error {
		return classifyREST(call())
	}, n.limiter, restRetryConfig())
}

// Rendered is a notice as sent to Discord.
type Rendered struct {
	Content string
	// KeepContent leaves the text of an edited message unchanged.
	KeepContent bool
	Components  []discordgo.MessageComponent
}

// Render turns a notice into message text and components.
func (n *Notifier) Render(notice lock.Notice) Rendered {
	r := Rendered{Components: unlockButton(notice.Affordance)}

	switch notice.Kind {
	case lock.NoticeCountdown:
		r.Content = fmt.Sprintf("The channel will be locked %s.", command.Timestamp(notice.At, "R"))
	case lock.NoticeInterrupted:
		r.Content = "Interrupted by a catch, not locking the channel!"
	case lock.NoticeSuperseded:
		r.Content = "~~The channel will be locked.~~ Superseded by a newer lock action."
	case lock.NoticeLockedUntil:
		r.Content = fmt.Sprintf("The channel has been locked, it will unlock at %s.", command.Timestamp(notice.At, ""))
	case lock.NoticeLockedIndefinitely:
		r.Content = "The channel has been locked, it will stay locked until someone unlocks manually."
	case lock.NoticeLockFailed:
		r.Content = "Could not lock the channel."
	case lock.NoticeManualLocked:
		r.Content = "The channel has been locked."
	case lock.NoticeAlreadyLocked:
		r.Content = "The channel is already locked."
	case lock.NoticeUnlocked:
		r.Content = "The channel has been unlocked."
	case lock.NoticeAutoUnlocked:
		r.Content = "The channel has been automatically unlocked due to inactivity. The spawn is now free-for-all to catch."
	case lock.NoticeAlreadyUnlocked:
		r.Content = "This channel is already unlocked."
	case lock.NoticeReleased:
		r.KeepContent = true
	case lock.NoticeParticipantMissing:
		r.Content = fmt.Sprintf(":warning: Unable to find %s bot, check that the bot is a member of the server! Otherwise, I may be missing some permissions.", n.guardedName)
	case lock.NoticePermissionDenied:
		r.Content = fmt.Sprintf(":warning: I am missing permissions to change %s's access to this channel.", n.guardedName)
	default:
		r.Content = fmt.Sprintf("Unknown notice %d.", notice.Kind)
	}
	return r
}

func unlockButton(a lock.Affordance) []discordgo.MessageComponent {
	var button discordgo.Button
	switch a {
	case lock.AffordanceUnlock:
		button = discordgo.Button{
			Label:    "Unlock",
			Style:    discordgo.DangerButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "🔐"},
			CustomID: command.UnlockButtonID,
		}
	case lock.AffordanceUsed:
		button = discordgo.Button{
			Label:    "Unlocked",
			Style:    discordgo.SuccessButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "🔓"},
			CustomID: command.UnlockButtonID,
			Disabled: true,
		}
	default:
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{button}},
	}
}

var _ lock.NotificationSink = (*Notifier)(nil)
