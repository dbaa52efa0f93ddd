package log

import "fmt"

// MessageFormatter prefixes operator facing messages with a component name.
type MessageFormatter struct {
	component string
	emoji     string
}

func NewMessageFormatter() *MessageFormatter {
	return &MessageFormatter{}
}

func (f *MessageFormatter) WithComponent(name, emoji string) *MessageFormatter {
	f.component = name
	f.emoji = emoji
	return f
}

func (f *MessageFormatter) format(mark, msg string) string {
	if f.component == "" {
		return fmt.Sprintf("%s  %s", mark, msg)
	}
	return fmt.Sprintf("%s  %s: %s  %s", f.emoji, f.component, mark, msg)
}

func (f *MessageFormatter) Fail(msg string) string     { return f.format("❌", msg) }
func (f *MessageFormatter) Ok(msg string) string       { return f.format("✅", msg) }
func (f *MessageFormatter) Warn(msg string) string     { return f.format("⚠️", msg) }
func (f *MessageFormatter) Start(msg string) string    { return f.format("🚀", msg) }
func (f *MessageFormatter) Disabled(msg string) string { return f.format("⏸️", msg) }
