package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sh0von/cow/core/logger"
	"github.com/sh0von/cow/core/telegram/commands"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and reply-keyboard button handlers.
type Registry struct {
	commands     map[string]commands.Command
	buttons      map[string]tele.HandlerFunc
	buttonsMu    sync.RWMutex
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		buttons:  make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds a new command.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns a slice of tele.Command, optionally filtering out hidden and admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: cmd, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand searches for a command by name or its aliases and returns the canonical key with metadata if found.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterButton maps an exact reply-keyboard button label to its handler.
func (r *Registry) RegisterButton(label string, handler tele.HandlerFunc) error {
	if r == nil || label == "" || handler == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.button.skip",
			slog.String("label", label),
			slog.Bool("handler_nil", handler == nil),
		)
		return errors.New("invalid button registration")
	}
	r.buttonsMu.Lock()
	defer r.buttonsMu.Unlock()
	if _, exists := r.buttons[label]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.button.duplicate",
			slog.String("label", label),
		)
		return fmt.Errorf("button already registered: %s", label)
	}
	r.buttons[label] = handler
	return nil
}

// GetButton safely returns handler by exact label.
func (r *Registry) GetButton(label string) (tele.HandlerFunc, bool) {
	r.buttonsMu.RLock()
	defer r.buttonsMu.RUnlock()
	h, ok := r.buttons[label]
	return h, ok
}

// ListButtons returns sorted labels (for diagnostics).
func (r *Registry) ListButtons() []string {
	r.buttonsMu.RLock()
	defer r.buttonsMu.RUnlock()
	names := make([]string, 0, len(r.buttons))
	for k := range r.buttons {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetTextFallback sets a global fallback handler for text that is neither a
// command nor a registered button label.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands sets the Telegram bot commands shown in the command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	commands := reg.ListCommands(true)
	if err := bot.SetCommands(commands); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
