/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: persist.go
Description: Serialization of mined grammars for the Arvada grammar miner. Encodes the
class-to-alternatives mapping plus start class as indented JSON, conventionally stored
under a .gramdict filename by the command layer.
*/

package grammar

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the grammar to path as indented JSON. The grammar is
// validated first so a corrupt artifact is never persisted.
func (g *Grammar) Save(path string) error {
	if err := g.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode grammar: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write grammar file: %w", err)
	}
	return nil
}

// Load reads a grammar previously written by Save and validates it
func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}
	var g Grammar
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode grammar: %w", err)
	}
	if g.Rules == nil {
		g.Rules = make(map[string][]Alternative)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}
