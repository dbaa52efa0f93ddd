package notify

import (
	"context"
	"errors"
)

type Type int

const (
	Alarm Type = iota
	Metric
)

func (nt Type) String() string {
	switch nt {
	case Alarm:
		return "Alarm"
	case Metric:
		return "Metric"
	default:
		return "Unknown"
	}
}

// Notification is an operator facing event. Fields must never carry secret
// material such as codes, passwords or tokens.
type Notification struct {
	Type    Type
	Source  string
	Message string
	Fields  map[string]any
}

// NewAlarm returns an Alarm raised by source.
func NewAlarm(source, message string, fields map[string]any) Notification {
	return Notification{Type: Alarm, Source: source, Message: message, Fields: fields}
}

// Notifier sends notifications to an operator channel.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NilNotifier discards every notification.
type NilNotifier struct{}

func NewNilNotifier() *NilNotifier {
	return &NilNotifier{}
}

func (n *NilNotifier) Send(ctx context.Context, notification Notification) error {
	return nil
}

// MultiNotifier fans a notification out to several notifiers. Every
// notifier is tried; the errors are joined.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier skips nil notifiers.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

func (m *MultiNotifier) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
