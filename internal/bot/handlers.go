package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/quizbot/core/telegram"
	"github.com/m3rciful/quizbot/core/telegram/callbacks"
	"github.com/m3rciful/quizbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/quizbot/core/telegram/helpers"
	"github.com/m3rciful/quizbot/core/telegram/keyboard"
	"github.com/m3rciful/quizbot/internal/authoring"
	"github.com/m3rciful/quizbot/internal/delivery"
	"github.com/m3rciful/quizbot/internal/quiz"
)

const (
	cbHelp          = "help"
	cbClose         = "close"
	cbPlay          = "play"
	cbAuthorCancel  = "author_cancel"
	authorCancelBtn = "❌ Discard quiz"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "How to create and play quizzes",
	})
	reg.RegisterCommand("/create", commands.Command{
		Handler:     a.handleCreate,
		Description: "Create a new quiz",
		Aliases:     []string{"new"},
	})
	reg.RegisterCommand("/done", commands.Command{
		Handler:     a.handleDone,
		Description: "Save the quiz you are creating",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Discard the quiz you are creating",
	})
	reg.RegisterCommand("/list", commands.Command{
		Handler:     a.handleList,
		Description: "List saved quizzes",
	})
	reg.RegisterCommand("/quiz", commands.Command{
		Handler:     a.handleQuiz,
		Description: "Play a quiz: /quiz <id>",
		Aliases:     []string{"play"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Show store and session counters",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	register := func(key string, h tele.HandlerFunc) error {
		return reg.RegisterCallback(key, h)
	}
	if err := register(cbHelp, a.callbackHelp); err != nil {
		return err
	}
	if err := register(cbClose, a.callbackClose); err != nil {
		return err
	}
	if err := register(cbPlay, a.callbackPlay); err != nil {
		return err
	}
	return register(cbAuthorCancel, a.callbackAuthorCancel)
}

func (a *App) handleStart(c tele.Context) error {
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🤔 Help", Unique: cbHelp},
		{Text: "❌ Close", Unique: cbClose},
	})
	return tghelpers.SendMD(c, msgWelcome, markup)
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendMD(c, a.helpText())
}

func (a *App) handleCreate(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	stage := a.orch.Begin(ctx, c.Sender().ID)

	text := msgAskQuestionFirst(a.cfg.Quiz.CorrectMarker)
	if stage == authoring.StageCategory {
		text = msgAskCategory
	}
	return tghelpers.SendText(c, text, &tele.SendOptions{
		ReplyMarkup: keyboard.SingleCancelMarkup(cbAuthorCancel, "cancel", authorCancelBtn),
	})
}

func (a *App) handleDone(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	z, err := a.orch.Finalize(ctx, c.Sender().ID)
	switch {
	case err == nil:
		return tghelpers.SendMD(c, msgQuizSaved(z))
	case errors.Is(err, authoring.ErrNoSession):
		return tghelpers.SendText(c, msgNoSession)
	case errors.Is(err, quiz.ErrEmptyQuiz):
		return tghelpers.SendText(c, msgNothingToSave)
	default:
		var storageErr *quiz.StorageError
		if errors.As(err, &storageErr) {
			// Session is intact; the user can retry /done.
			_ = tghelpers.SendText(c, msgSaveFailed)
		}
		return err
	}
}

func (a *App) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if a.orch.Cancel(ctx, c.Sender().ID) {
		return tghelpers.SendText(c, msgCancelled)
	}
	return tghelpers.SendText(c, msgNothingToCancel)
}

func (a *App) handleList(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	summaries, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return tghelpers.SendText(c, msgNoQuizzes)
	}

	var (
		b    strings.Builder
		btns []keyboard.InlineBtn
	)
	b.WriteString("Saved quizzes:\n")
	for i, s := range summaries {
		fmt.Fprintf(&b, "%d. %s (%d question(s), id %s)\n", i+1, s.Title, s.Questions, s.ID)
		btns = append(btns, keyboard.InlineBtn{
			Text:   "▶️ " + s.Title,
			Unique: cbPlay,
			Data:   s.ID,
		})
	}
	b.WriteString("\nPlay one with /quiz <id> or tap a button.")
	return tghelpers.SendText(c, b.String(), &tele.SendOptions{
		ReplyMarkup: keyboard.InlineButtons(btns),
	})
}

func (a *App) handleQuiz(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return tghelpers.SendText(c, msgQuizUsage)
	}
	return a.deliverQuiz(c, strings.TrimSpace(args[0]))
}

func (a *App) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	count, err := a.store.Len(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"Stored quizzes: %d\nOpen authoring sessions: %d",
		count, a.orch.OpenSessions(),
	))
}

func (a *App) handleAdminReject(c tele.Context) error {
	return tghelpers.SendText(c, msgAdminOnly)
}

func (a *App) handleUnknownText(c tele.Context) error {
	return tghelpers.SendText(c, msgUnknown)
}

// deliverQuiz replays the quiz as a sequence of quiz polls. Polls are sent
// synchronously so each question reaches the chat only after the previous
// one was accepted by the transport.
func (a *App) deliverQuiz(c tele.Context, quizID string) error {
	ctx := tghelpers.BuildContext(c)
	err := a.seq.Deliver(ctx, quizID, func(req delivery.PollRequest) error {
		poll := &tele.Poll{
			Type:          tele.PollQuiz,
			Question:      req.QuestionText,
			CorrectOption: req.CorrectIndex,
			Anonymous:     req.Anonymous,
		}
		for _, opt := range req.Options {
			poll.AddOptions(opt)
		}
		return c.Send(poll)
	})
	if errors.Is(err, quiz.ErrNotFound) {
		return tghelpers.SendText(c, msgQuizNotFound(quizID))
	}
	return err
}

func (a *App) callbackHelp(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, a.helpText())
}

func (a *App) callbackClose(c tele.Context) error {
	return c.Delete()
}

func (a *App) callbackPlay(c tele.Context) error {
	quizID := strings.TrimSpace(callbacks.CallbackPayload(c))
	if quizID == "" {
		return tghelpers.SendText(c, msgQuizUsage)
	}
	return a.deliverQuiz(c, quizID)
}

func (a *App) callbackAuthorCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if a.orch.Cancel(ctx, c.Sender().ID) {
		return tghelpers.EditOrSendMD(c, msgCancelled)
	}
	return tghelpers.EditOrSendMD(c, msgNothingToCancel)
}

// fsmAdapter feeds non-command text into the authoring orchestrator; it
// satisfies the message router's FSM interface.
type fsmAdapter struct {
	app *App
}

// InProgress reports whether the user has an open authoring session.
func (f *fsmAdapter) InProgress(userID int64) bool {
	return f.app.orch.InProgress(userID)
}

// ManagerHandler advances the user's session with the incoming text.
func (f *fsmAdapter) ManagerHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	adv, err := f.app.orch.HandleTurn(ctx, authoring.Turn{
		UserID: c.Sender().ID,
		Text:   c.Text(),
	})
	if err != nil {
		var vErr *quiz.ValidationError
		if errors.As(err, &vErr) {
			return tghelpers.SendText(c, "⚠️ "+vErr.Reason)
		}
		if errors.Is(err, authoring.ErrNoSession) {
			return tghelpers.SendText(c, msgNoSession)
		}
		return err
	}
	return tghelpers.SendText(c, f.app.promptFor(adv))
}
