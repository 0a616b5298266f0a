package bot

import "strings"

// InputKind tags the closed set of input tokens the state machine accepts.
type InputKind int

const (
	KindText InputKind = iota
	KindStart
	KindMenu
	KindClear
	KindHelp
)

// Input is a classified inbound message.
type Input struct {
	Kind InputKind
	Text string
}

// Classify maps raw transport text onto the input token set. Global
// commands are matched exactly, case-sensitive, with no arguments;
// everything else is free text.
func Classify(raw string) Input {
	switch strings.TrimSpace(raw) {
	case "/start":
		return Input{Kind: KindStart}
	case "/menu":
		return Input{Kind: KindMenu}
	case "/clear":
		return Input{Kind: KindClear}
	case "/help":
		return Input{Kind: KindHelp}
	}
	return Input{Kind: KindText, Text: raw}
}
