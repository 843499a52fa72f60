// Package config loads per-language canonical tag set definitions
// from YAML files and builds a populated tag registry from them.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/tags"
)

// TagSetFile is one per-language tag set definition.
//
// Expected format:
//
//	language: en
//	pos:
//	  - tag: NNP
//	    category: proper-noun
//	  - tag: VBZ
//	    category: verb
//	ner:
//	  - tag: LOCATION
//	    type: place
//	  - tag: PERSON
//	    type: person
//
// The ner section is optional; a language without one is tokenized and
// POS-tagged but produces no named-entity chunks.
type TagSetFile struct {
	Language string     `yaml:"language"`
	Pos      []PosEntry `yaml:"pos"`
	Ner      []NerEntry `yaml:"ner"`
}

// PosEntry is one canonical POS tag definition
type PosEntry struct {
	Tag      string `yaml:"tag"`
	Category string `yaml:"category"`
}

// NerEntry is one canonical NER tag definition
type NerEntry struct {
	Tag  string `yaml:"tag"`
	Type string `yaml:"type"`
}

// LoadTagSetFile loads one tag set definition from a YAML file
func LoadTagSetFile(path string) (*TagSetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f TagSetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tag set %s: %w", path, err)
	}
	if strings.TrimSpace(f.Language) == "" {
		return nil, fmt.Errorf("tag set %s has no language: %w", path, internalerr.ErrInvalidInput)
	}
	return &f, nil
}

// Apply installs the file's tag sets into a registry.
func (f *TagSetFile) Apply(registry *tags.Registry) {
	posTags := make([]*tags.PosTag, 0, len(f.Pos))
	for _, e := range f.Pos {
		posTags = append(posTags, &tags.PosTag{Raw: e.Tag, Category: e.Category})
	}
	registry.SetPosTagSet(f.Language, tags.NewPosTagSet(posTags...))

	if len(f.Ner) > 0 {
		nerTags := make([]*tags.NerTag, 0, len(f.Ner))
		for _, e := range f.Ner {
			nerTags = append(nerTags, &tags.NerTag{Raw: e.Tag, Type: e.Type})
		}
		registry.SetNerTagSet(f.Language, tags.NewNerTagSet(nerTags...))
	}
}

// LoadRegistry builds a registry from all .yaml/.yml files in a
// directory, one file per language.
func LoadRegistry(dir string, logger *slog.Logger) (*tags.Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tag set dir: %w", err)
	}

	registry := tags.NewRegistry(logger)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		f, err := LoadTagSetFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		f.Apply(registry)
	}
	return registry, nil
}
