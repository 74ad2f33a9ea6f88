// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role classifies who produced a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleCitations Role = "citations"
)

// Speaker labels written to transcripts.
const (
	UserSpeaker      = "You"
	AssistantSpeaker = "FemCite"
	citationsSuffix  = " citations"
)

// ChatTurn is one entry of the current exchange.
type ChatTurn struct {
	Role    Role   `json:"role" yaml:"role"`
	Speaker string `json:"speaker" yaml:"speaker"`
	Message string `json:"message" yaml:"message"`
}

// UserTurn builds the question turn.
func UserTurn(question string) ChatTurn {
	return ChatTurn{Role: RoleUser, Speaker: UserSpeaker, Message: question}
}

// AssistantTurn builds the narrative answer turn.
func AssistantTurn(answer string) ChatTurn {
	return ChatTurn{Role: RoleAssistant, Speaker: AssistantSpeaker, Message: answer}
}

// CitationTurn builds the formatted reference-list turn for style.
func CitationTurn(style Style, formatted string) ChatTurn {
	return ChatTurn{Role: RoleCitations, Speaker: style.Label(), Message: formatted}
}

// RoleForSpeaker maps a transcript speaker label back to its role. The
// second result is false for labels that are not produced by the pipeline.
func RoleForSpeaker(speaker string) (Role, bool) {
	switch speaker {
	case UserSpeaker:
		return RoleUser, true
	case AssistantSpeaker:
		return RoleAssistant, true
	}
	for _, st := range Styles {
		if speaker == st.Label() {
			return RoleCitations, true
		}
	}
	return "", false
}
