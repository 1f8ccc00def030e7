package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/clinidocs/summarizer/internal/llm"
)

// ErrMalformedStructure means the generation reply could not be decoded into
// the expected shape. Tasks treat it as "nothing found", not as a document
// failure.
var ErrMalformedStructure = errors.New("malformed generation reply")

// Medication is one entry of the extract_medications reply.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

type medicationsReply struct {
	Medications []Medication `json:"medications"`
}

// Medications decodes a (possibly code-fenced) JSON reply into medication
// records. Decoding failure, a non-object reply, or a missing "medications"
// key is ErrMalformedStructure. Records whose name is empty after trimming
// are dropped before being surfaced.
func Medications(raw string) ([]Medication, error) {
	body, err := sanitizeMedications([]byte(StripFence(raw)))
	if err != nil {
		return nil, err
	}

	if err := llm.ValidateJSONAgainstSchema(llm.BuildMedicationsJSONSchema(), body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}

	var reply medicationsReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}

	meds := make([]Medication, 0, len(reply.Medications))
	for _, m := range reply.Medications {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			continue
		}
		m.Dosage = strings.TrimSpace(m.Dosage)
		m.Frequency = strings.TrimSpace(m.Frequency)
		meds = append(meds, m)
	}
	return meds, nil
}

// sanitizeMedications normalizes a decoded reply before validation. The
// generation service sometimes emits numbers where the prompt asks for
// strings ("dosage": 500); those are coerced, null or otherwise unusable
// field values are dropped from their record, and non-object list entries
// are discarded. Only undecodable JSON, a non-object reply, or a missing
// "medications" key fails the whole reply.
func sanitizeMedications(body []byte) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	items, ok := m["medications"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing medications list", ErrMalformedStructure)
	}

	coerce := func(entry map[string]any, key string) {
		v, ok := entry[key]
		if !ok {
			return
		}
		switch t := v.(type) {
		case string:
		case float64:
			entry[key] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
			delete(entry, key)
		default:
			// unexpected type -> drop the field, keep the record
			delete(entry, key)
		}
	}

	kept := make([]any, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"name", "dosage", "frequency"} {
			coerce(entry, key)
		}
		kept = append(kept, entry)
	}
	m["medications"] = kept

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	return out, nil
}

// StripFence removes one pair of surrounding Markdown code-fence markers, if
// present. Both generic fences and JSON-tagged fences are accepted; anything
// else is returned trimmed but otherwise untouched.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
