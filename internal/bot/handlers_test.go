package bot

import (
	"context"
	"strings"
	"testing"

	coreconfig "github.com/sh0von/cow/core/config"
	"github.com/sh0von/cow/core/telegram/state"
	"github.com/sh0von/cow/internal/tracker"

	tele "gopkg.in/telebot.v4"
)

type sentMessage struct {
	text   string
	markup *tele.ReplyMarkup
}

// fakeContext implements the slice of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context
	user  *tele.User
	chat  *tele.Chat
	text  string
	store map[string]interface{}
	sent  []sentMessage
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		user:  &tele.User{ID: userID},
		chat:  &tele.Chat{ID: userID},
		text:  text,
		store: make(map[string]interface{}),
	}
}

func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }
func (f *fakeContext) Sender() *tele.User  { return f.user }
func (f *fakeContext) Chat() *tele.Chat    { return f.chat }
func (f *fakeContext) Text() string        { return f.text }

func (f *fakeContext) Get(key string) interface{}    { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{}) { f.store[key] = v }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	msg := sentMessage{}
	if s, ok := what.(string); ok {
		msg.text = s
	}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok && so != nil {
			msg.markup = so.ReplyMarkup
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	st := tracker.NewMemoryStore()
	return &App{
		cfg: &Config{Config: coreconfig.Config{
			Storage: coreconfig.StorageConfig{Backend: coreconfig.BackendFile},
		}},
		store: st,
		svc:   tracker.NewService(st),
		fsm:   state.NewMemoryManager(),
	}
}

func TestHandleStartSendsWelcomeAndMenu(t *testing.T) {
	app := newTestApp(t)
	c := newFakeContext(10, "/start")

	if err := app.handleStart(c); err != nil {
		t.Fatalf("handleStart: %v", err)
	}

	if len(c.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(c.sent))
	}
	if c.sent[0].text != msgWelcome {
		t.Fatalf("first message = %q, want welcome", c.sent[0].text)
	}
	if !strings.HasPrefix(c.sent[1].text, "Your Tuitions:") {
		t.Fatalf("second message = %q, want menu", c.sent[1].text)
	}
	if c.sent[1].markup == nil || len(c.sent[1].markup.ReplyKeyboard) != 3 {
		t.Fatalf("menu keyboard = %+v, want 3 rows", c.sent[1].markup)
	}
}

func TestAddTuitionDialog(t *testing.T) {
	app := newTestApp(t)

	c := newFakeContext(10, tracker.ButtonAddTuition)
	if err := app.handleAddTuitionPrompt(c); err != nil {
		t.Fatalf("handleAddTuitionPrompt: %v", err)
	}
	if c.sent[len(c.sent)-1].text != msgAskName {
		t.Fatalf("prompt = %q", c.sent[len(c.sent)-1].text)
	}
	if !app.fsm.InProgress(10) {
		t.Fatal("dialog state not set after prompt")
	}

	c = newFakeContext(10, "Math")
	if err := app.handleTuitionName(c); err != nil {
		t.Fatalf("handleTuitionName: %v", err)
	}
	if app.fsm.InProgress(10) {
		t.Fatal("dialog state not cleared after add")
	}

	menu := c.sent[len(c.sent)-1]
	if !strings.Contains(menu.text, "Math - 0 days attended.") {
		t.Fatalf("menu = %q, want Math line", menu.text)
	}
	if menu.markup == nil || len(menu.markup.ReplyKeyboard) != 4 {
		t.Fatalf("menu keyboard rows = %+v, want 4", menu.markup)
	}
}

func TestEmptyTuitionNameKeepsDialog(t *testing.T) {
	app := newTestApp(t)
	app.fsm.SetState(10, stateAwaitingTuitionName)

	c := newFakeContext(10, "   ")
	if err := app.handleTuitionName(c); err != nil {
		t.Fatalf("handleTuitionName: %v", err)
	}
	if c.sent[0].text != msgEmptyName {
		t.Fatalf("reply = %q, want empty-name notice", c.sent[0].text)
	}
	if !app.fsm.InProgress(10) {
		t.Fatal("dialog state cleared on empty name")
	}
}

func TestDuplicateTuitionNameKeepsDialog(t *testing.T) {
	app := newTestApp(t)
	c := newFakeContext(10, "Math")
	app.fsm.SetState(10, stateAwaitingTuitionName)
	if err := app.handleTuitionName(c); err != nil {
		t.Fatalf("first add: %v", err)
	}

	app.fsm.SetState(10, stateAwaitingTuitionName)
	c = newFakeContext(10, "Math")
	if err := app.handleTuitionName(c); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if !strings.Contains(c.sent[0].text, "already have a tuition named 'Math'") {
		t.Fatalf("reply = %q", c.sent[0].text)
	}
	if !app.fsm.InProgress(10) {
		t.Fatal("dialog state cleared on duplicate name")
	}
}

func TestDialogSupersededByMenuButton(t *testing.T) {
	app := newTestApp(t)
	app.fsm.SetState(10, stateAwaitingTuitionName)

	c := newFakeContext(10, tracker.ButtonMainMenu)
	if err := app.handleTuitionName(c); err != nil {
		t.Fatalf("handleTuitionName: %v", err)
	}
	if app.fsm.InProgress(10) {
		t.Fatal("dialog state not cleared by menu button")
	}
	if !strings.HasPrefix(c.sent[len(c.sent)-1].text, "Your Tuitions:") {
		t.Fatalf("reply = %q, want menu", c.sent[len(c.sent)-1].text)
	}
	rec, err := app.svc.Record(context.Background(), 10)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(rec.Tuitions) != 0 {
		t.Fatalf("button label stored as tuition: %+v", rec.Tuitions)
	}
}

func TestAttendAndDeleteButtons(t *testing.T) {
	app := newTestApp(t)

	c := newFakeContext(10, "Math")
	app.fsm.SetState(10, stateAwaitingTuitionName)
	if err := app.handleTuitionName(c); err != nil {
		t.Fatalf("add: %v", err)
	}

	c = newFakeContext(10, "📅 Math (0 days)")
	if err := app.handleDynamicButtons(c); err != nil {
		t.Fatalf("attend: %v", err)
	}
	if c.sent[0].text != "You have attended one more day of 'Math'. It is now 1 days." {
		t.Fatalf("attend reply = %q", c.sent[0].text)
	}

	// Stale label: the count in the pressed button does not matter.
	c = newFakeContext(10, "📅 Math (0 days)")
	if err := app.handleDynamicButtons(c); err != nil {
		t.Fatalf("attend stale: %v", err)
	}
	if c.sent[0].text != "You have attended one more day of 'Math'. It is now 2 days." {
		t.Fatalf("stale attend reply = %q", c.sent[0].text)
	}

	c = newFakeContext(10, "❌ Delete Math")
	if err := app.handleDynamicButtons(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c.sent[0].text != "Tuition 'Math' has been deleted." {
		t.Fatalf("delete reply = %q", c.sent[0].text)
	}

	c = newFakeContext(10, "❌ Delete Math")
	if err := app.handleDynamicButtons(c); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if c.sent[0].text != "Tuition 'Math' not found." {
		t.Fatalf("missing delete reply = %q", c.sent[0].text)
	}
}

func TestUnknownTextIsIgnored(t *testing.T) {
	app := newTestApp(t)

	c := newFakeContext(10, "hello there")
	if err := app.handleDynamicButtons(c); err != nil {
		t.Fatalf("handleDynamicButtons: %v", err)
	}
	if len(c.sent) != 0 {
		t.Fatalf("unknown text produced %d replies", len(c.sent))
	}
}

func TestAboutReportsTotalUsers(t *testing.T) {
	app := newTestApp(t)

	start := newFakeContext(10, "/start")
	if err := app.handleStart(start); err != nil {
		t.Fatalf("handleStart: %v", err)
	}

	c := newFakeContext(10, tracker.ButtonAbout)
	if err := app.handleAbout(c); err != nil {
		t.Fatalf("handleAbout: %v", err)
	}
	if !strings.Contains(c.sent[0].text, "Total Users: 1") {
		t.Fatalf("about reply = %q", c.sent[0].text)
	}
	if !strings.Contains(c.sent[0].text, "https://github.com/sh0von/cow") {
		t.Fatalf("about reply missing repository link: %q", c.sent[0].text)
	}
}
