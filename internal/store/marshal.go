package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/ppc/internal/hostinfo"
)

// marshalHost converts a host snapshot to JSON TEXT. A nil snapshot is
// stored as "{}".
func marshalHost(info *hostinfo.Info) (string, error) {
	if info == nil {
		return "{}", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(info); err != nil {
		return "", fmt.Errorf("marshal host: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalHost parses host JSON TEXT. "{}" and "" decode to nil.
func unmarshalHost(data string) (*hostinfo.Info, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var info hostinfo.Info
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("unmarshal host: %w", err)
	}
	return &info, nil
}
