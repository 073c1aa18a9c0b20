package view

import (
	"fmt"

	"github.com/foodpod-bot/foodpod/core/telegram/format"
)

// Plain replies of the bot commands.
const (
	Unauthorized      = "🚧 This bot will only talk to authorized users!"
	Registered        = "🔧 You have registered this chat as a new 'Food Pod'; use the bot's commands to add pods and assign items to them"
	AlreadyRegistered = "🚧 This chat was already registered as a Food Pod!"
	UnknownCommand    = "🚧 The provided command was not recognized!"
	NotRegistered     = "🚧 This chat is not a Food Pod yet, send /start first"
	DialogStopped     = "🛑 Nothing is pending anymore."
	GoneNotice        = "⚠️ That entry does not exist anymore."
	UnsupportedAction = "Unsupported action"
	ReportHeader      = "⏰ *Daily expiry report*"
	StorageNameHint   = "up to 20 characters, without ':' or '@'"
)

// Welcome greets the user who sent /start.
func Welcome(user string) string {
	return fmt.Sprintf("🔧 Welcome, %s", user)
}

// ErrorOccurred reports an unexpected handler error to the chat.
func ErrorOccurred(err error) string {
	return fmt.Sprintf("🚨 The following error occurred: %v", err)
}

// prompt is a request for free text; problem explains why the last answer was rejected.
func prompt(text, problem string) Screen {
	if problem != "" {
		text = "❌ " + format.Escape(problem) + "\n" + text
	}
	return Screen{Text: text}
}

// PromptNewStorage asks for a storage name.
func PromptNewStorage(problem string) Screen {
	return prompt("📝 Send the name of the new storage ("+format.Escape(StorageNameHint)+").", problem)
}

// PromptNewItem asks for an item name.
func PromptNewItem(storage, problem string) Screen {
	return prompt(fmt.Sprintf("📝 Send the name of the new item for %s (%s).",
		format.Bold(storage), format.Escape(StorageNameHint)), problem)
}

// PromptQuantity asks for the quantity of an item.
func PromptQuantity(storage, item, problem string) Screen {
	return prompt(fmt.Sprintf("🔢 How many %s are in %s? Send a whole number.", format.Bold(item), format.Escape(storage)), problem)
}

// PromptExpiry asks for the expiry date of an item.
func PromptExpiry(storage, item, problem string) Screen {
	return prompt(fmt.Sprintf("📅 When does %s in %s expire? Send a date as YYYY-MM-DD.",
		format.Bold(item), format.Escape(storage)), problem)
}

// StorageAdded is the notice shown after a storage is created.
func StorageAdded(name string) string {
	return fmt.Sprintf("✅ Storage %s added", format.Bold(name))
}

// StorageDeleted is the notice shown after a storage is removed.
func StorageDeleted(name string) string {
	return fmt.Sprintf("🗑 Storage %s deleted", format.Bold(name))
}

// ItemSaved is the notice shown when an item dialog completes.
func ItemSaved(name string) string {
	return fmt.Sprintf("✅ %s saved", format.Bold(name))
}

// ItemDeleted is the notice shown after an item is removed.
func ItemDeleted(name string) string {
	return fmt.Sprintf("🗑 %s deleted", format.Bold(name))
}

// ExpiredCleared is the notice shown after clearing expired items.
func ExpiredCleared(n int) string {
	if n == 1 {
		return "🧹 1 expired item cleared"
	}
	return fmt.Sprintf("🧹 %d expired items cleared", n)
}

// OutboxStats summarises outbound message delivery for /info.
func OutboxStats(sent, retried, failed uint64) string {
	return fmt.Sprintf("📨 Outbox: %d sent, %d retried, %d failed", sent, retried, failed)
}
