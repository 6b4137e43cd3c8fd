// Package events registers event handlers by event kind, by name and by
// type.
package events

import (
	"reflect"

	"github.com/arthur-debert/keyfactory/pkg/factory"
)

// Kind identifies an event.
type Kind int

const (
	KindCreated Kind = iota + 1
	KindDeleted
)

func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindDeleted:
		return "deleted"
	}
	return "unknown"
}

// Handler reacts to one event.
type Handler interface {
	Handle(subject string) string
}

type CreatedHandler struct {
	_ factory.Registration[Handler, Kind] `factory:"KindCreated"`
}

func (*CreatedHandler) Handle(subject string) string { return subject + " created" }

// DeletedHandler is keyed by the numeric value of KindDeleted.
type DeletedHandler struct {
	_ factory.Registration[Handler, Kind] `factory:"2"`
}

func (*DeletedHandler) Handle(subject string) string { return subject + " deleted" }

// AuditHandler is reachable both by name and by its own type.
type AuditHandler struct {
	_ factory.Registration[Handler, string]       `factory:"audit"`
	_ factory.Registration[Handler, reflect.Type] `factory:"AuditHandler"`

	seen int
}

func (h *AuditHandler) Handle(subject string) string {
	h.seen++
	return "audited " + subject
}
