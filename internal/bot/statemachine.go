package bot

import (
	"fmt"
	"strings"

	"github.com/spec-kit/support-bot/internal/domain"
)

// Effect is a side-effecting action emitted by a transition and applied by
// the service outside the pure transition function.
type Effect interface {
	isEffect()
}

// CreateTicketEffect asks the service to persist a completed specialist request.
type CreateTicketEffect struct {
	Name    string
	Contact string
	Issue   string
}

func (CreateTicketEffect) isEffect() {}

// AIQueryEffect asks the service to run one AI consultation turn. The user
// turn is already appended to the outgoing context history.
type AIQueryEffect struct {
	Text string
}

func (AIQueryEffect) isEffect() {}

// Outcome is the full result of one transition.
type Outcome struct {
	State  domain.State
	Ctx    domain.Context
	Effect Effect
	Reply  string
}

const (
	maxNameLen    = 100
	maxContactLen = 200
	maxIssueLen   = 2000
)

type formStep struct {
	field      string
	maxLen     int
	next       domain.State
	nextPrompt string
}

var formSteps = map[domain.State]formStep{
	domain.StateSpecialistName:    {field: domain.FieldName, maxLen: maxNameLen, next: domain.StateSpecialistContact, nextPrompt: contactPromptText},
	domain.StateSpecialistContact: {field: domain.FieldContact, maxLen: maxContactLen, next: domain.StateSpecialistIssue, nextPrompt: issuePromptText},
	domain.StateSpecialistIssue:   {field: domain.FieldIssue, maxLen: maxIssueLen, next: domain.StateSpecialistConfirm},
}

// Transition is the deterministic conversation transition function. It never
// mutates its inputs; the returned context is a fresh copy.
func Transition(state domain.State, ctx domain.Context, in Input) Outcome {
	ctx = ctx.Clone()

	// Global commands override state-specific parsing from every state.
	switch in.Kind {
	case KindStart:
		ctx.ClearFields()
		return Outcome{State: domain.StateMainMenu, Ctx: ctx, Reply: welcomeText + "\n\n" + menuText}
	case KindMenu:
		ctx.ClearFields()
		return Outcome{State: domain.StateMainMenu, Ctx: ctx, Reply: menuText}
	case KindClear:
		return transitionClear(state)
	case KindHelp:
		return Outcome{State: state, Ctx: ctx, Reply: helpText}
	}

	switch state {
	case domain.StateWelcome:
		return Outcome{State: domain.StateMainMenu, Ctx: ctx, Reply: welcomeText + "\n\n" + menuText}
	case domain.StateMainMenu:
		return transitionMenu(ctx, in.Text)
	case domain.StateSpecialistName, domain.StateSpecialistContact, domain.StateSpecialistIssue:
		return transitionForm(state, ctx, in.Text)
	case domain.StateSpecialistConfirm:
		return transitionConfirm(ctx, in.Text)
	case domain.StateAIChat:
		return transitionAIChat(ctx, in.Text)
	case domain.StateFAQ:
		return transitionFAQ(ctx, in.Text)
	}

	// Unknown state in a stored session falls back to the menu.
	return Outcome{State: domain.StateMainMenu, Ctx: ctx, Reply: menuText}
}

// transitionClear wipes the context. In-form users return to the menu since
// the flow their state belonged to no longer has its data.
func transitionClear(state domain.State) Outcome {
	next := state
	switch state {
	case domain.StateWelcome, domain.StateSpecialistName, domain.StateSpecialistContact,
		domain.StateSpecialistIssue, domain.StateSpecialistConfirm:
		next = domain.StateMainMenu
	}
	reply := clearedText
	if next == domain.StateMainMenu {
		reply += "\n\n" + menuText
	}
	return Outcome{State: next, Ctx: domain.NewContext(), Reply: reply}
}

func transitionMenu(ctx domain.Context, text string) Outcome {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "specialist", "talk to a specialist":
		return Outcome{State: domain.StateSpecialistName, Ctx: ctx, Reply: namePromptText}
	case "2", "ai", "ai assistant", "chat with the ai assistant":
		return Outcome{State: domain.StateAIChat, Ctx: ctx, Reply: aiIntroText}
	case "3", "faq":
		reply := "Frequently asked questions:\n\n" + faqQuestionList() + "\n\nAsk one of these, or /menu to go back."
		return Outcome{State: domain.StateFAQ, Ctx: ctx, Reply: reply}
	}
	return Outcome{State: domain.StateMainMenu, Ctx: ctx, Reply: chooseOptionText + "\n\n" + menuText}
}

func transitionForm(state domain.State, ctx domain.Context, text string) Outcome {
	step := formSteps[state]
	value := strings.TrimSpace(text)
	if value == "" {
		return Outcome{State: state, Ctx: ctx, Reply: emptyFieldText}
	}
	if len([]rune(value)) > step.maxLen {
		reply := fmt.Sprintf("That is a bit long, please keep it under %d characters.", step.maxLen)
		return Outcome{State: state, Ctx: ctx, Reply: reply}
	}

	ctx.SetField(step.field, value)
	if step.next == domain.StateSpecialistConfirm {
		return Outcome{State: step.next, Ctx: ctx, Reply: confirmSummary(ctx)}
	}
	return Outcome{State: step.next, Ctx: ctx, Reply: step.nextPrompt}
}

func confirmSummary(ctx domain.Context) string {
	return fmt.Sprintf("Please check your request:\n\nName: %s\nContact: %s\nIssue: %s\n\n%s",
		ctx.Field(domain.FieldName),
		ctx.Field(domain.FieldContact),
		ctx.Field(domain.FieldIssue),
		confirmHintText)
}

func transitionConfirm(ctx domain.Context, text string) Outcome {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y":
		effect := CreateTicketEffect{
			Name:    ctx.Field(domain.FieldName),
			Contact: ctx.Field(domain.FieldContact),
			Issue:   ctx.Field(domain.FieldIssue),
		}
		ctx.ClearFields()
		return Outcome{
			State:  domain.StateMainMenu,
			Ctx:    ctx,
			Effect: effect,
			Reply:  ticketCreatedText + "\n\n" + menuText,
		}
	case "no", "n":
		ctx.ClearFields()
		return Outcome{State: domain.StateMainMenu, Ctx: ctx, Reply: ticketDiscardedText + "\n\n" + menuText}
	}
	return Outcome{State: domain.StateSpecialistConfirm, Ctx: ctx, Reply: confirmHintText}
}

func transitionAIChat(ctx domain.Context, text string) Outcome {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Outcome{State: domain.StateAIChat, Ctx: ctx, Reply: aiEmptyInputText}
	}
	ctx.AppendTurn(domain.RoleUser, trimmed)
	return Outcome{State: domain.StateAIChat, Ctx: ctx, Effect: AIQueryEffect{Text: trimmed}}
}

func transitionFAQ(ctx domain.Context, text string) Outcome {
	if answer, ok := lookupFAQ(text); ok {
		return Outcome{State: domain.StateFAQ, Ctx: ctx, Reply: answer}
	}
	reply := "I could not find an answer to that. Try one of:\n\n" + faqQuestionList() + "\n\nOr send /menu to go back."
	return Outcome{State: domain.StateFAQ, Ctx: ctx, Reply: reply}
}
