package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	fg        string
	time      string
	component []string
	key       string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

// Gruvbox Dark (warm, muted)
var gruvbox = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;108m",
	component: []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
	key:       "\x1b[38;5;109m",
	warn:      "\x1b[38;5;214m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;88m",
}

// Everforest Dark (forest greens)
var everforest = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;107m",
	component: []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
	key:       "\x1b[38;5;109m",
	warn:      "\x1b[38;5;179m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;52m",
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for console log output.
// Unknown theme names are ignored.
func SetTheme(theme string) {
	if theme == "everforest" || theme == "gruvbox" {
		currentTheme = theme
	}
}

func colors() palette {
	if currentTheme == "gruvbox" {
		return gruvbox
	}
	return everforest
}

func colorComponent(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	p := colors()
	return p.component[hash%len(p.component)]
}

// minimalEncoder is a compact console encoder.
// Format: "13:04:35  WARN  e.unit  unresolved reference  unit=goog:a.b symbol=a.b.C"
//
// Context fields added through With() are kept in the embedded map encoder and
// printed before the entry's own fields. No field is ever dropped.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: clone}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	p := colors()
	final := buffer.NewPool().Get()

	final.AppendString(p.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(p.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if kv := formatFields(enc.Fields, fields); kv != "" {
		final.AppendString("  ")
		final.AppendString(kv)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for non-info levels
func levelColorString(level zapcore.Level) string {
	p := colors()
	switch level {
	case zapcore.DebugLevel:
		return p.key + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + p.warnBg + p.warn + "WARN" + colorReset
	default:
		return colorBold + p.errBg + p.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: resolver -> resolver, emit.unit -> e.unit
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// formatFields renders context fields (sorted) followed by entry fields (in call order)
func formatFields(context map[string]interface{}, fields []zapcore.Field) string {
	p := colors()
	var parts []string

	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, p.key+k+"="+colorReset+fmt.Sprint(context[k]))
	}

	for _, field := range fields {
		m := zapcore.NewMapObjectEncoder()
		field.AddTo(m)
		for k, v := range m.Fields {
			parts = append(parts, p.key+k+"="+colorReset+fmt.Sprint(v))
		}
	}

	return strings.Join(parts, " ")
}
