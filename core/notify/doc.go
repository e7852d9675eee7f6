// Package notify delivers human-facing alerts to notification channels.
//
// A channel is a string of the form `<scheme>:<destination>`:
//
//	slack:https://hooks.slack.com/services/...   incoming webhook, one attachment per alert
//	telegram:-1001234567890                       bot message to a chat id (needs NOTIFY_TELEGRAM_TOKEN)
//
// Delivery is best-effort. The Dispatcher bounds every send with NOTIFY_TIMEOUT and
// logs failures; callers never see them.
package notify
