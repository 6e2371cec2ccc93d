package bot

import (
	"fmt"

	tghelpers "github.com/sh0von/cow/core/telegram/helpers"
	"github.com/sh0von/cow/core/telegram/keyboard"
	"github.com/sh0von/cow/internal/tracker"

	tele "gopkg.in/telebot.v4"
)

const (
	msgWelcome    = "Welcome to the Tuition Tracker Bot! Use the buttons below to interact with the bot."
	msgAskName    = "Please enter the name of the tuition class to add:"
	msgEmptyName  = "Tuition name cannot be empty. Please try again."
	msgDuplicate  = "You already have a tuition named '%s'. Please enter a different name."
	msgDeleted    = "Tuition '%s' has been deleted."
	msgNotFound   = "Tuition '%s' not found."
	msgAttended   = "You have attended one more day of '%s'. It is now %d days."
	msgFailure    = "Something went wrong. Please try again later."
	aboutTemplate = "Developer: Shovon\nGitHub Repository: https://github.com/sh0von/cow\nTotal Users: %d"
	statsTemplate = "Users: %d\nTuitions: %d\nBackend: %s"
)

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	a.fsm.ClearState(c.Sender().ID)

	rec, err := a.svc.StartUser(ctx, c.Sender().ID)
	if err != nil {
		_ = tghelpers.SendText(c, msgFailure)
		return err
	}

	if err := tghelpers.SendText(c, msgWelcome); err != nil {
		return err
	}
	return a.sendMenu(c, rec)
}

func (a *App) handleMainMenu(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	a.fsm.ClearState(c.Sender().ID)

	rec, err := a.svc.Record(ctx, c.Sender().ID)
	if err != nil {
		_ = tghelpers.SendText(c, msgFailure)
		return err
	}
	return a.sendMenu(c, rec)
}

func (a *App) handleAbout(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	a.fsm.ClearState(c.Sender().ID)

	total, err := a.svc.TotalUsers(ctx)
	if err != nil {
		_ = tghelpers.SendText(c, msgFailure)
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(aboutTemplate, total))
}

func (a *App) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	stats, err := a.svc.Stats(ctx)
	if err != nil {
		_ = tghelpers.SendText(c, msgFailure)
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(statsTemplate, stats.Users, stats.Tuitions, a.cfg.Storage.Backend))
}

func (a *App) handleAddTuitionPrompt(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	if _, err := a.svc.StartUser(ctx, c.Sender().ID); err != nil {
		_ = tghelpers.SendText(c, msgFailure)
		return err
	}

	a.fsm.SetState(c.Sender().ID, stateAwaitingTuitionName)
	return tghelpers.SendText(c, msgAskName)
}

// handleTuitionName consumes the reply to the add-tuition prompt. A
// known command or button pressed instead of a name abandons the
// prompt and is dispatched as usual.
func (a *App) handleTuitionName(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	text := c.Text()

	if h, ok := a.knownTextHandler(text); ok {
		a.fsm.ClearState(userID)
		return h(c)
	}

	_, rec, err := a.svc.AddTuition(ctx, userID, text)
	if err != nil {
		switch err.(type) {
		case *tracker.ValidationError:
			// Stay in the dialog so the user can retry.
			return tghelpers.SendText(c, msgEmptyName)
		case *tracker.DuplicateError:
			return tghelpers.SendText(c, fmt.Sprintf(msgDuplicate, text))
		default:
			a.fsm.ClearState(userID)
			_ = tghelpers.SendText(c, msgFailure)
			return err
		}
	}

	a.fsm.ClearState(userID)
	return a.sendMenu(c, rec)
}

// handleDynamicButtons routes keyboard buttons whose labels embed a
// tuition name. Unrecognized text is ignored.
func (a *App) handleDynamicButtons(c tele.Context) error {
	text := c.Text()

	if name, ok := tracker.ParseAttendButton(text); ok {
		return a.handleAttend(c, name)
	}
	if name, ok := tracker.ParseDeleteButton(text); ok {
		return a.handleDelete(c, name)
	}
	return nil
}

func (a *App) handleAttend(c tele.Context, name string) error {
	ctx := tghelpers.BuildContext(c)

	entry, rec, err := a.svc.MarkAttendance(ctx, c.Sender().ID, name)
	if err != nil {
		if _, ok := err.(*tracker.NotFoundError); ok {
			return tghelpers.SendText(c, fmt.Sprintf(msgNotFound, name))
		}
		_ = tghelpers.SendText(c, msgFailure)
		return err
	}

	if err := tghelpers.SendText(c, fmt.Sprintf(msgAttended, entry.Name, entry.Days)); err != nil {
		return err
	}
	return a.sendMenu(c, rec)
}

func (a *App) handleDelete(c tele.Context, name string) error {
	ctx := tghelpers.BuildContext(c)

	rec, err := a.svc.DeleteTuition(ctx, c.Sender().ID, name)
	if err != nil {
		if _, ok := err.(*tracker.NotFoundError); ok {
			return tghelpers.SendText(c, fmt.Sprintf(msgNotFound, name))
		}
		_ = tghelpers.SendText(c, msgFailure)
		return err
	}

	if err := tghelpers.SendText(c, fmt.Sprintf(msgDeleted, name)); err != nil {
		return err
	}
	return a.sendMenu(c, rec)
}

func (a *App) sendMenu(c tele.Context, rec *tracker.UserRecord) error {
	text, rows := tracker.RenderMenu(rec)
	return tghelpers.SendKeyboard(c, text, keyboard.ReplyGrid(rows))
}

func (a *App) knownTextHandler(text string) (tele.HandlerFunc, bool) {
	switch text {
	case "/start":
		return a.handleStart, true
	case "/stats":
		return a.handleStats, true
	case tracker.ButtonAddTuition:
		return a.handleAddTuitionPrompt, true
	case tracker.ButtonMainMenu:
		return a.handleMainMenu, true
	case tracker.ButtonAbout:
		return a.handleAbout, true
	}
	if _, ok := tracker.ParseAttendButton(text); ok {
		return a.handleDynamicButtons, true
	}
	if _, ok := tracker.ParseDeleteButton(text); ok {
		return a.handleDynamicButtons, true
	}
	return nil, false
}
