package mentor

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// DecodeTranscript parses a stored transcript. Anything unparseable yields an
// empty history and ok=false; entries without a known role are dropped.
func DecodeTranscript(raw datatypes.JSON) (msgs []Message, ok bool) {
	if len(raw) == 0 {
		return []Message{}, true
	}
	var decoded []Message
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return []Message{}, false
	}
	out := make([]Message, 0, len(decoded))
	for _, m := range decoded {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		out = append(out, m)
	}
	return out, true
}

func EncodeTranscript(msgs []Message) (datatypes.JSON, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// TrimTranscript keeps the newest limit entries, evicting from the front.
func TrimTranscript(msgs []Message, limit int) []Message {
	if limit <= 0 || len(msgs) <= limit {
		return msgs
	}
	out := make([]Message, limit)
	copy(out, msgs[len(msgs)-limit:])
	return out
}
