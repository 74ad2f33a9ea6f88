// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strings"

	"github.com/pdiddy/femcite/pkg/types"
)

// Transcript renders turns as "{speaker}:\n{message}" blocks separated by a
// blank line.
func Transcript(turns []types.ChatTurn) string {
	blocks := make([]string, len(turns))
	for i, t := range turns {
		blocks[i] = t.Speaker + ":\n" + t.Message
	}
	return strings.Join(blocks, "\n\n")
}

// turnOrder is the fixed sequence of turns in a recorded exchange.
var turnOrder = []types.Role{types.RoleUser, types.RoleAssistant, types.RoleCitations}

// ParseTranscript reconstructs turns from Transcript output. A line is a
// speaker header when it starts the text or follows a blank line, names a
// known speaker followed by a colon, and is the next turn of the exchange.
// After the citations header every line belongs to the reference list.
func ParseTranscript(text string) []types.ChatTurn {
	var (
		turns []types.ChatTurn
		cur   *types.ChatTurn
		body  []string
		next  int
	)
	flush := func() {
		if cur == nil {
			return
		}
		msg := strings.Join(body, "\n")
		cur.Message = strings.TrimSuffix(msg, "\n")
		turns = append(turns, *cur)
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if next < len(turnOrder) && (i == 0 || lines[i-1] == "") {
			if speaker, ok := strings.CutSuffix(line, ":"); ok {
				if role, ok := types.RoleForSpeaker(speaker); ok && role == turnOrder[next] {
					next++
					flush()
					cur = &types.ChatTurn{Role: role, Speaker: speaker}
					body = nil
					continue
				}
			}
		}
		if cur != nil {
			body = append(body, line)
		}
	}
	flush()
	return turns
}
