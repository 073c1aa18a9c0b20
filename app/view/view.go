// Package view renders inventory snapshots into message text and inline
// keyboards. Every function is pure: same input, same Screen.
package view

import (
	"fmt"
	"time"

	"github.com/foodpod-bot/foodpod/app/callback"
	"github.com/foodpod-bot/foodpod/app/inventory"
	"github.com/foodpod-bot/foodpod/core/telegram/format"
)

// Button is one inline button.
type Button struct {
	Text string
	Data callback.Button
}

// Screen is message text (legacy Markdown) plus inline keyboard rows.
type Screen struct {
	Text string
	Rows [][]Button
}

// WithNotice prefixes the screen text with a status line.
func (s Screen) WithNotice(notice string) Screen {
	if notice != "" {
		s.Text = notice + "\n\n" + s.Text
	}
	return s
}

// Label markers for items.
const (
	MarkerUnset    = "⚪"
	MarkerOverdue  = "🔴"
	MarkerToday    = "🟠"
	MarkerDueSoon  = "🟡"
	EmptyLabel     = "~ Empty ~"
	labelAdd       = "➕ Add"
	labelBack      = "⬅️ Back"
	labelExpired   = "🔎 Filter expired"
	labelDelStore  = "🗑 Delete this storage"
	labelModify    = "✏️ Modify"
	labelDelete    = "🗑 Delete"
	labelClear     = "🧹 Clear expired"
	labelConfirm   = "✅ Yes, delete"
	labelRefresh   = "🔄 Refresh"
	unsetExpiryTxt = "not set"
)

// Marker returns the decoration of an item label; "" means none.
func Marker(qty int, expiry, today time.Time) string {
	if qty == 0 {
		return MarkerUnset
	}
	days := inventory.DaysExpired(today, expiry)
	switch {
	case days > 0:
		return MarkerOverdue
	case days == 0:
		return MarkerToday
	case days >= -inventory.ExpiringWindowDays:
		return MarkerDueSoon
	}
	return ""
}

// DaysLabel renders daysExpired as "N days ago", "today" or "in N days".
func DaysLabel(days int) string {
	switch {
	case days == 1:
		return "1 day ago"
	case days > 1:
		return fmt.Sprintf("%d days ago", days)
	case days == 0:
		return "today"
	case days == -1:
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", -days)
}

func itemLabel(d inventory.ItemDetail, today time.Time) string {
	label := fmt.Sprintf("%s (%d)", d.Name, d.Quantity)
	if m := Marker(d.Quantity, d.Expiry, today); m != "" {
		label += " " + m
	}
	return label
}

func emptyRow(pod string) []Button {
	return []Button{{Text: EmptyLabel, Data: callback.Button{Pod: pod, Kind: callback.KindNoop}}}
}

// StorageList is the root menu of a pod.
func StorageList(pod string, storages []string) Screen {
	s := Screen{Text: "📦 *Storages*\nPick a storage to see its items."}
	for _, name := range storages {
		s.Rows = append(s.Rows, []Button{{
			Text: name,
			Data: callback.Button{Pod: pod, Kind: callback.KindStorage, Storage: name},
		}})
	}
	if len(storages) == 0 {
		s.Rows = append(s.Rows, emptyRow(pod))
	}
	s.Rows = append(s.Rows, []Button{
		{Text: labelAdd, Data: callback.Button{Pod: pod, Kind: callback.KindAdd, Target: callback.AddStorage}},
		{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindBack, Target: callback.BackBot}},
	})
	return s
}

// ItemList shows the items of one storage with their markers.
func ItemList(pod, storage string, items []inventory.ItemDetail, today time.Time) Screen {
	s := Screen{Text: fmt.Sprintf("🗄 %s\n%s unset  %s expired  %s today  %s within %d days",
		format.Bold(storage), MarkerUnset, MarkerOverdue, MarkerToday, MarkerDueSoon, inventory.ExpiringWindowDays)}
	for _, d := range items {
		s.Rows = append(s.Rows, []Button{{
			Text: itemLabel(d, today),
			Data: callback.Button{Pod: pod, Kind: callback.KindItem, Origin: callback.OriginList, Storage: storage, Item: d.Name},
		}})
	}
	if len(items) == 0 {
		s.Rows = append(s.Rows, emptyRow(pod))
	}
	s.Rows = append(s.Rows,
		[]Button{
			{Text: labelAdd, Data: callback.Button{Pod: pod, Kind: callback.KindAdd, Target: callback.AddItem, Storage: storage}},
			{Text: labelExpired, Data: callback.Button{Pod: pod, Kind: callback.KindExpired, Storage: storage}},
		},
		[]Button{
			{Text: labelDelStore, Data: callback.Button{Pod: pod, Kind: callback.KindDelete, Target: callback.DeleteStorage, Storage: storage}},
			{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindBack, Target: callback.BackStorages}},
		},
	)
	return s
}

// backFromItem returns the button leading back to the list an item was opened from.
func backFromItem(pod, storage string, origin callback.Origin) Button {
	switch origin {
	case callback.OriginExpired:
		return Button{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindExpired, Storage: storage}}
	case callback.OriginCheck:
		return Button{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindItemCheck, Target: callback.CheckList}}
	}
	return Button{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindBack, Target: callback.BackItemList, Storage: storage}}
}

// ItemDetail shows one item.
func ItemDetail(pod string, d inventory.ItemDetail, origin callback.Origin, today time.Time) Screen {
	if origin == callback.OriginNone {
		origin = callback.OriginList
	}
	expiry := unsetExpiryTxt
	if !d.Expiry.Equal(inventory.SentinelExpiry) {
		expiry = fmt.Sprintf("%s (%s)", inventory.FormatDate(d.Expiry), DaysLabel(inventory.DaysExpired(today, d.Expiry)))
	}
	text := fmt.Sprintf("🥫 %s in %s\nQuantity: %d\nExpiry: %s",
		format.Bold(d.Name), format.Escape(d.Storage), d.Quantity, expiry)
	if m := Marker(d.Quantity, d.Expiry, today); m != "" {
		text += "\n" + m
	}
	return Screen{
		Text: text,
		Rows: [][]Button{
			{
				{Text: labelModify, Data: callback.Button{Pod: pod, Kind: callback.KindModifyItem, Storage: d.Storage, Item: d.Name}},
				{Text: labelDelete, Data: callback.Button{Pod: pod, Kind: callback.KindDelete, Target: callback.DeleteItem, Origin: origin, Storage: d.Storage, Item: d.Name}},
			},
			{backFromItem(pod, d.Storage, origin)},
		},
	}
}

// ExpiredList shows the expired items of one storage, most overdue first.
func ExpiredList(pod, storage string, expired []inventory.ExpiredItem) Screen {
	s := Screen{Text: fmt.Sprintf("%s Expired items in %s", MarkerOverdue, format.Bold(storage))}
	for _, e := range expired {
		s.Rows = append(s.Rows, []Button{{
			Text: fmt.Sprintf("%s (%s)", e.Name, DaysLabel(e.DaysExpired)),
			Data: callback.Button{Pod: pod, Kind: callback.KindItem, Origin: callback.OriginExpired, Storage: storage, Item: e.Name},
		}})
	}
	if len(expired) == 0 {
		s.Rows = append(s.Rows, emptyRow(pod))
	}
	s.Rows = append(s.Rows, []Button{
		{Text: labelClear, Data: callback.Button{Pod: pod, Kind: callback.KindDelete, Target: callback.DeleteExpired, Storage: storage}},
		{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindBack, Target: callback.BackItemList, Storage: storage}},
	})
	return s
}

// CheckList shows expired and soon-to-expire items across the pod.
func CheckList(pod string, bad []inventory.BadItem) Screen {
	s := Screen{Text: fmt.Sprintf("⚠️ *Expired or expiring within %d days*", inventory.ExpiringWindowDays)}
	for _, b := range bad {
		s.Rows = append(s.Rows, []Button{{
			Text: fmt.Sprintf("%s @ %s (%s)", b.Name, b.Storage, DaysLabel(b.DaysExpired)),
			Data: callback.Button{Pod: pod, Kind: callback.KindItemCheck, Target: callback.CheckItem, Storage: b.Storage, Item: b.Name},
		}})
	}
	if len(bad) == 0 {
		s.Rows = append(s.Rows, emptyRow(pod))
	}
	s.Rows = append(s.Rows, []Button{
		{Text: labelRefresh, Data: callback.Button{Pod: pod, Kind: callback.KindItemCheck, Target: callback.CheckList}},
		{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindBack, Target: callback.BackStorages}},
	})
	return s
}

// ConfirmDeleteStorage asks before a cascading delete.
func ConfirmDeleteStorage(pod, storage string, items int) Screen {
	return Screen{
		Text: fmt.Sprintf("❓ Delete storage %s and its %d items?", format.Bold(storage), items),
		Rows: [][]Button{{
			{Text: labelConfirm, Data: callback.Button{Pod: pod, Kind: callback.KindDeleteStorageConfirm, Storage: storage}},
			{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindBack, Target: callback.BackItemList, Storage: storage}},
		}},
	}
}

// ConfirmDeleteItem asks before removing one item.
func ConfirmDeleteItem(pod, storage, item string, origin callback.Origin) Screen {
	if origin == callback.OriginNone {
		origin = callback.OriginList
	}
	return Screen{
		Text: fmt.Sprintf("❓ Delete %s from %s?", format.Bold(item), format.Escape(storage)),
		Rows: [][]Button{{
			{Text: labelConfirm, Data: callback.Button{Pod: pod, Kind: callback.KindDeleteItemConfirm, Storage: storage, Item: item}},
			{Text: labelBack, Data: callback.Button{Pod: pod, Kind: callback.KindBack, Target: callback.BackItem, Origin: origin, Storage: storage, Item: item}},
		}},
	}
}

// Farewell replaces the menu when the user leaves it.
func Farewell() Screen {
	return Screen{Text: "👋 Menu closed. Use /pods to open it again."}
}
