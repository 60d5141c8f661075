package bot

import (
	"fmt"

	"github.com/m3rciful/quizbot/core/telegram/format"
	"github.com/m3rciful/quizbot/internal/authoring"
	"github.com/m3rciful/quizbot/internal/quiz"
)

const msgWelcome = "👋 *Quiz Bot*\n\n" +
	"I turn your questions into playable quiz polls.\n" +
	"Send /create to start a new quiz or /list to browse existing ones."

const (
	msgAskCategory     = "📂 What is the quiz about? Send a category name."
	msgNoSession       = "You are not creating a quiz right now. Send /create to start one."
	msgNothingToSave   = "There are no complete questions yet, nothing to save."
	msgSaveFailed      = "😞 Saving failed, your draft is intact. Try /done again in a moment."
	msgCancelled       = "🗑 Draft discarded."
	msgNothingToCancel = "Nothing to discard."
	msgNoQuizzes       = "No quizzes yet. Be the first: /create"
	msgQuizUsage       = "Usage: /quiz <id>\nFind ids with /list."
	msgAdminOnly       = "⛔️ This command is for the bot admin."
	msgUnknown         = "I did not get that. Send /help to see what I can do."
)

func (a *App) helpText() string {
	return fmt.Sprintf("*Creating a quiz*\n"+
		"1. Send /create and follow the prompts.\n"+
		"2. Send a question, then its answer options one by one.\n"+
		"3. After the options, send the number of the correct one.\n"+
		"4. Send /done to save, /cancel to discard.\n\n"+
		"*Shortcut*: send the question and all options in one message,\n"+
		"one per line, marking the correct option with %s.\n\n"+
		"*Playing*\n"+
		"/list shows saved quizzes, /quiz <id> replays one as quiz polls.",
		a.cfg.Quiz.CorrectMarker)
}

func msgAskQuestionFirst(marker string) string {
	return fmt.Sprintf("✍️ Send the first question.\n"+
		"Tip: you can send the question with all options in one message, "+
		"one per line, marking the correct option with %s.", marker)
}

func msgQuizSaved(z quiz.Quiz) string {
	title := z.Title()
	if escaped, err := format.EscapeMarkdown(title, format.MarkdownV1, ""); err == nil {
		title = escaped
	}
	return fmt.Sprintf("✅ Saved *%s* with %d question(s).\n"+
		"Play it with /quiz %s", title, len(z.Questions), z.ID)
}

func msgQuizNotFound(id string) string {
	return fmt.Sprintf("Quiz %q not found. See /list for available ids.", id)
}

// promptFor renders the next instruction for the user after a successful turn.
func (a *App) promptFor(adv authoring.Advance) string {
	switch adv.Stage {
	case authoring.StageQuestion:
		if adv.QuestionCount == 0 {
			return msgAskQuestionFirst(a.cfg.Quiz.CorrectMarker)
		}
		return fmt.Sprintf("👌 Question %d recorded. Send the next question, "+
			"or /done to save.", adv.QuestionCount)
	case authoring.StageOption:
		return fmt.Sprintf("Send option %d of %d.", adv.OptionCount+1, adv.MaxOptions)
	case authoring.StageCorrect:
		return fmt.Sprintf("Which option is correct? Send a number from 1 to %d.", adv.OptionCount)
	case authoring.StageReady:
		return fmt.Sprintf("👌 %d question(s) ready. Send /done to save or /cancel to discard.",
			adv.QuestionCount)
	case authoring.StageCategory:
		return msgAskCategory
	default:
		return msgNoSession
	}
}
