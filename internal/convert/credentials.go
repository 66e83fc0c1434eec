package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Credentials holds service account credentials as given by the caller:
// either a JSON object, or a string that is literal JSON or a file path.
type Credentials struct {
	object json.RawMessage
	text   string
}

func CredentialsJSON(data []byte) *Credentials {
	return &Credentials{object: append(json.RawMessage(nil), data...)}
}

func CredentialsString(s string) *Credentials {
	return &Credentials{text: s}
}

func (c *Credentials) IsZero() bool {
	return c == nil || (len(c.object) == 0 && c.text == "")
}

func (c Credentials) MarshalJSON() ([]byte, error) {
	if len(c.object) > 0 {
		return c.object, nil
	}
	return json.Marshal(c.text)
}

func (c *Credentials) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = Credentials{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Credentials{text: s}
	default:
		*c = Credentials{object: append(json.RawMessage(nil), data...)}
	}
	return nil
}

// Resolve returns the credentials as JSON bytes. A string is parsed as JSON
// first; if that fails it is read as a path to a JSON file.
func (c *Credentials) Resolve() ([]byte, error) {
	if c.IsZero() {
		return nil, nil
	}
	if len(c.object) > 0 {
		if err := checkCredentialsJSON(c.object); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredentialsParse, err)
		}
		return c.object, nil
	}

	literal := []byte(c.text)
	if checkCredentialsJSON(literal) == nil {
		return literal, nil
	}

	data, err := os.ReadFile(expandHome(strings.TrimSpace(c.text)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialsParse, err)
	}
	if err := checkCredentialsJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCredentialsParse, c.text, err)
	}
	return data, nil
}

func checkCredentialsJSON(data []byte) error {
	var obj map[string]any
	return json.Unmarshal(data, &obj)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
