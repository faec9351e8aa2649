package devo

// Notification channels. They correspond to the delivery surfaces the OS
// exposes; dispatch is fire-and-forget with no delivery confirmation.
const (
	ChannelDailyVerse     = "daily_verse"
	ChannelPrayerReminder = "prayer_reminder"
)

// Notifier dispatches a user-facing notification on a named channel.
type Notifier interface {
	Notify(channel, title, body string)
}
