package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const maxIntakeSize = 1 << 20

// LoadFile reads a raw intake form. The format is chosen by extension:
// .json, .yaml/.yml or .toml.
func LoadFile(path string) (IntakeForm, error) {
	var form IntakeForm

	info, err := os.Stat(path)
	if err != nil {
		return form, fmt.Errorf("stat intake file: %w", err)
	}
	if info.Size() > maxIntakeSize {
		return form, fmt.Errorf("intake file too large: %d bytes (max %d)", info.Size(), maxIntakeSize)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by the operator
	if err != nil {
		return form, fmt.Errorf("read intake file: %w", err)
	}

	form, err = Decode(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return form, fmt.Errorf("parse intake file %s: %w", filepath.Base(path), err)
	}
	return form, nil
}

// Decode parses data in the format named by ext (".json", ".yaml", ".yml",
// ".toml").
func Decode(data []byte, ext string) (IntakeForm, error) {
	var form IntakeForm
	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&form); err != nil {
			return form, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&form); err != nil {
			return form, err
		}
	case ".toml":
		md, err := toml.Decode(string(data), &form)
		if err != nil {
			return form, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return form, fmt.Errorf("unknown keys: %v", undecoded)
		}
	default:
		return form, fmt.Errorf("unsupported intake format %q", ext)
	}
	return form, nil
}
