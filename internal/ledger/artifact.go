package ledger

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
)

// ContractArtifact is the parsed shape of an ink!-style contract bundle:
// hex-encoded wasm bytecode, constructor/message selectors, and a storage
// layout descriptor.
type ContractArtifact struct {
	Code          []byte
	Constructors  []Constructor
	Messages      []Message
	StorageLayout StorageLayout
}

// Constructor is a named, selector-tagged contract constructor.
type Constructor struct {
	Label    string
	Selector [4]byte
}

// Message is a named, selector-tagged contract message.
type Message struct {
	Label    string
	Selector [4]byte
}

// StorageLayout is a minimal root-key descriptor; enough to build storage
// read keys for ReadStorage without modeling the full ink! layout grammar.
type StorageLayout struct {
	RootKeyHex string
}

type artifactJSON struct {
	Source struct {
		Wasm string `json:"wasm"`
	} `json:"source"`
	Spec struct {
		Constructors []struct {
			Label    string `json:"label"`
			Selector string `json:"selector"`
		} `json:"constructors"`
		Messages []struct {
			Label    string `json:"label"`
			Selector string `json:"selector"`
		} `json:"messages"`
	} `json:"spec"`
	Storage struct {
		Root struct {
			RootKey string `json:"root_key"`
		} `json:"root"`
	} `json:"storage"`
}

// LoadArtifact reads and parses a contract artifact JSON file at path.
func LoadArtifact(path string) (ContractArtifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ContractArtifact{}, newErr(kindStdIo, err)
	}

	var parsed artifactJSON
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ContractArtifact{}, newErr(kindSerdeJson, err)
	}

	code, err := decodeHexPrefixed(parsed.Source.Wasm)
	if err != nil {
		return ContractArtifact{}, newErr(kindHexDecode, err)
	}

	constructors := make([]Constructor, 0, len(parsed.Spec.Constructors))
	for _, c := range parsed.Spec.Constructors {
		sel, err := decodeSelector(c.Selector)
		if err != nil {
			return ContractArtifact{}, newErr(kindHexDecode, err)
		}
		constructors = append(constructors, Constructor{Label: c.Label, Selector: sel})
	}

	messages := make([]Message, 0, len(parsed.Spec.Messages))
	for _, m := range parsed.Spec.Messages {
		sel, err := decodeSelector(m.Selector)
		if err != nil {
			return ContractArtifact{}, newErr(kindHexDecode, err)
		}
		messages = append(messages, Message{Label: m.Label, Selector: sel})
	}

	return ContractArtifact{
		Code:          code,
		Constructors:  constructors,
		Messages:      messages,
		StorageLayout: StorageLayout{RootKeyHex: parsed.Storage.Root.RootKey},
	}, nil
}

// GetConstructorSelector returns the constructor selector for label.
func (a ContractArtifact) GetConstructorSelector(label string) ([4]byte, error) {
	for _, c := range a.Constructors {
		if c.Label == label {
			return c.Selector, nil
		}
	}
	return [4]byte{}, newErr(kindConstructorNotFound, nil)
}

// GetMessageSelector returns the message selector for label.
func (a ContractArtifact) GetMessageSelector(label string) ([4]byte, error) {
	for _, m := range a.Messages {
		if m.Label == label {
			return m.Selector, nil
		}
	}
	return [4]byte{}, newErr(kindMessageNotFound, nil)
}

func decodeHexPrefixed(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

func decodeSelector(s string) ([4]byte, error) {
	b, err := decodeHexPrefixed(s)
	if err != nil {
		return [4]byte{}, err
	}
	var out [4]byte
	copy(out[:], b)
	return out, nil
}
