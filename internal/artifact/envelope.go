package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// FormatVersion is the only supported export format version.
const FormatVersion = "1.0"

// Spec is the metadata block of an exported artifact.
type Spec struct {
	Name           string `json:"name"`
	FormatVersion  string `json:"format_version"`
	SKLearnVersion string `json:"sklearn_version,omitempty"`
}

// envelope is the on-disk form shared by all artifacts: a spec block naming the
// fitted object and its kind-specific parameters.
type envelope struct {
	ModelSpec Spec            `json:"model_spec"`
	Params    json.RawMessage `json:"params"`
}

// decode reads an envelope and checks its version and that its name is one of want.
func decode(r io.Reader, want ...string) (envelope, error) {
	var env envelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decode JSON: %w", err)
	}
	if env.ModelSpec.FormatVersion == "" {
		return envelope{}, errors.New("format_version is required")
	}
	if env.ModelSpec.FormatVersion != FormatVersion {
		return envelope{}, fmt.Errorf("unsupported format version: %s", env.ModelSpec.FormatVersion)
	}
	if env.ModelSpec.Name == "" {
		return envelope{}, errors.New("model name is required")
	}
	if len(env.Params) == 0 {
		return envelope{}, errors.New("params are required")
	}
	for _, name := range want {
		if env.ModelSpec.Name == name {
			return env, nil
		}
	}
	return envelope{}, fmt.Errorf("expected %v, got %s", want, env.ModelSpec.Name)
}

// Encode writes params in the artifact envelope. It is the inverse of the loaders
// and is used to produce fixtures.
func Encode(w io.Writer, name string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	env := envelope{
		ModelSpec: Spec{Name: name, FormatVersion: FormatVersion},
		Params:    raw,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&env); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}
