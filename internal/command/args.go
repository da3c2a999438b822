package command

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
)

// Args holds the decoded named arguments of one invocation.
type Args map[string]string

// String returns the argument named key, or "" if absent.
func (a Args) String(key string) string {
	return a[key]
}

// decodeArgs parses raw as a JSON object and extracts c's params.
// Unknown keys are ignored.
func decodeArgs(c Command, raw []byte) (Args, error) {
	fields := map[string]json.RawMessage{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, apperr.New(apperr.KindInvalidArgument, c.Name, "",
				fmt.Errorf("command %s: arguments must be a JSON object: %w", c.Name, err))
		}
	}

	args := make(Args, len(c.Params))
	for _, p := range c.Params {
		v, ok := fields[p.Name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, apperr.New(apperr.KindInvalidArgument, c.Name, "",
				fmt.Errorf("command %s missing required key %s", c.Name, p.Name))
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, apperr.New(apperr.KindInvalidArgument, c.Name, "",
				fmt.Errorf("invalid args `%s` for command `%s`: expected a string", p.Name, c.Name))
		}
		args[p.Name] = s
	}
	return args, nil
}
