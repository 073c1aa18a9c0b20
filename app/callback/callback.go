// Package callback defines the typed inline-button payloads of the bot and
// their wire form "<pod>:<kind>:<target>@<origin>@<storage>@<item>".
package callback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/foodpod-bot/foodpod/core/telegram/callbacks"
)

// Kind is the button type. Values are the two-letter wire codes.
type Kind string

const (
	KindStorage              Kind = "sb"
	KindAdd                  Kind = "ad"
	KindModifyItem           Kind = "mi"
	KindDelete               Kind = "dl"
	KindDeleteStorageConfirm Kind = "ds"
	KindDeleteItemConfirm    Kind = "di"
	KindExpired              Kind = "ex"
	KindBack                 Kind = "bk"
	KindItem                 Kind = "it"
	KindItemCheck            Kind = "ic"
	KindNoop                 Kind = "no"
)

var kindNames = map[Kind]string{
	KindStorage:              "storage_button",
	KindAdd:                  "add_button",
	KindModifyItem:           "modify_item",
	KindDelete:               "del_button",
	KindDeleteStorageConfirm: "del_storage_confirm",
	KindDeleteItemConfirm:    "del_item_confirm",
	KindExpired:              "expired_button",
	KindBack:                 "back_button",
	KindItem:                 "item_button",
	KindItemCheck:            "item_check_button",
	KindNoop:                 "noop",
}

// Kinds lists every button kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindStorage, KindAdd, KindModifyItem, KindDelete, KindDeleteStorageConfirm,
		KindDeleteItemConfirm, KindExpired, KindBack, KindItem, KindItemCheck, KindNoop,
	}
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown(" + string(k) + ")"
}

// Target selects the variant of an add, delete, back or check button.
type Target string

const (
	TargetNone Target = ""

	AddStorage Target = "s"
	AddItem    Target = "i"

	DeleteStorage Target = "s"
	DeleteItem    Target = "i"
	DeleteExpired Target = "e"

	BackBot      Target = "b"
	BackStorages Target = "s"
	BackItemList Target = "l"
	BackItem     Target = "i"

	CheckList Target = "l"
	CheckItem Target = "i"
)

// Origin records which list an item detail was opened from, so its Back
// button returns there.
type Origin string

const (
	OriginNone    Origin = ""
	OriginList    Origin = "l"
	OriginExpired Origin = "e"
	OriginCheck   Origin = "c"
)

// Button is a decoded inline-button payload.
type Button struct {
	Pod     string
	Kind    Kind
	Target  Target
	Origin  Origin
	Storage string
	Item    string
}

const fieldSep = "@"

var (
	// ErrInvalid is returned for payloads that do not describe a known button.
	ErrInvalid = errors.New("callback: invalid button")
	// ErrTooLong is returned when the encoded button exceeds the Telegram limit.
	ErrTooLong = callbacks.ErrTooLong
)

type need uint8

const (
	needStorage need = 1 << iota
	needItem
	needOrigin
)

// rules returns the required fields of b, or ok=false for an unknown kind/target pair.
func (b Button) rules() (need, bool) {
	switch b.Kind {
	case KindNoop:
		return 0, b.Target == TargetNone
	case KindStorage, KindExpired, KindDeleteStorageConfirm:
		return needStorage, b.Target == TargetNone
	case KindModifyItem, KindDeleteItemConfirm:
		return needStorage | needItem, b.Target == TargetNone
	case KindItem:
		return needStorage | needItem | needOrigin, b.Target == TargetNone
	case KindAdd:
		switch b.Target {
		case AddStorage:
			return 0, true
		case AddItem:
			return needStorage, true
		}
	case KindDelete:
		switch b.Target {
		case DeleteStorage, DeleteExpired:
			return needStorage, true
		case DeleteItem:
			return needStorage | needItem | needOrigin, true
		}
	case KindBack:
		switch b.Target {
		case BackBot, BackStorages:
			return 0, true
		case BackItemList:
			return needStorage, true
		case BackItem:
			return needStorage | needItem | needOrigin, true
		}
	case KindItemCheck:
		switch b.Target {
		case CheckList:
			return 0, true
		case CheckItem:
			return needStorage | needItem, true
		}
	}
	return 0, false
}

// Validate checks that b is a well-formed button of a known kind.
func (b Button) Validate() error {
	if b.Pod == "" || strings.ContainsAny(b.Pod, callbacks.Sep+fieldSep) {
		return fmt.Errorf("%w: pod %q", ErrInvalid, b.Pod)
	}
	need, ok := b.rules()
	if !ok {
		return fmt.Errorf("%w: kind %s target %q", ErrInvalid, b.Kind, b.Target)
	}
	switch b.Origin {
	case OriginNone, OriginList, OriginExpired, OriginCheck:
	default:
		return fmt.Errorf("%w: origin %q", ErrInvalid, b.Origin)
	}
	if need&needOrigin != 0 && b.Origin == OriginNone {
		return fmt.Errorf("%w: %s needs an origin", ErrInvalid, b.Kind)
	}
	if need&needStorage != 0 && b.Storage == "" {
		return fmt.Errorf("%w: %s needs a storage", ErrInvalid, b.Kind)
	}
	if need&needItem != 0 && b.Item == "" {
		return fmt.Errorf("%w: %s needs an item", ErrInvalid, b.Kind)
	}
	for _, v := range []string{b.Storage, b.Item} {
		if strings.ContainsAny(v, callbacks.Sep+fieldSep) {
			return fmt.Errorf("%w: %q contains a delimiter", ErrInvalid, v)
		}
	}
	return nil
}

// Encode validates b and returns its callback data.
func Encode(b Button) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	payload := strings.Join([]string{string(b.Target), string(b.Origin), b.Storage, b.Item}, fieldSep)
	return callbacks.Join(b.Pod, string(b.Kind), payload)
}

// Decode parses callback data produced by Encode.
func Decode(data string) (Button, error) {
	pod, kind, payload, err := callbacks.Split(data)
	if err != nil {
		return Button{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	fields := strings.Split(payload, fieldSep)
	if len(fields) != 4 {
		return Button{}, fmt.Errorf("%w: payload %q", ErrInvalid, payload)
	}
	b := Button{
		Pod:     pod,
		Kind:    Kind(kind),
		Target:  Target(fields[0]),
		Origin:  Origin(fields[1]),
		Storage: fields[2],
		Item:    fields[3],
	}
	if err := b.Validate(); err != nil {
		return Button{}, err
	}
	return b, nil
}

// Fits reports whether every button naming storage and item fits in callback
// data for pod. Names are checked against the widest payload the bot renders.
func Fits(pod, storage, item string) error {
	widest := Button{Pod: pod, Kind: KindDelete, Target: DeleteExpired, Storage: storage}
	if item != "" {
		widest = Button{Pod: pod, Kind: KindDelete, Target: DeleteItem, Origin: OriginExpired, Storage: storage, Item: item}
	}
	_, err := Encode(widest)
	return err
}
