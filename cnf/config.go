// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Charles University, Faculty of Arts,
//                Institute of the Czech National Corpus
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cnf

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/czcorpus/subvoc/corpus/modders"
	"github.com/czcorpus/subvoc/db"
	"github.com/czcorpus/subvoc/vocab"
)

// SourceConf specifies a single corpus text source. A path may
// point to a file or to a directory containing multiple files of
// the same format.
type SourceConf struct {
	Path string `json:"path"`

	// Format is either "plain" (raw text, the default)
	// or "vertical" (corpus vertical file).
	Format string `json:"format,omitempty"`

	// VertColumn is a zero-based positional attribute index
	// to take word forms from (vertical sources only).
	VertColumn int `json:"vertColumn,omitempty"`

	// VertWordMods lists normalization functions applied to each
	// extracted word form (vertical sources only). Empty means
	// trimming plus lowercasing.
	VertWordMods []string `json:"vertWordMods,omitempty"`

	Encoding string `json:"encoding,omitempty"`
}

func (s *SourceConf) IsVertical() bool {
	return s.Format == "vertical"
}

// TrainConf holds configuration for a concrete vocabulary
// training task.
type TrainConf struct {
	Corpus  string       `json:"corpus"`
	Sources []SourceConf `json:"sources"`

	// BaseUnit is the initial word decomposition granularity,
	// either "char" (the default) or "byte".
	BaseUnit string `json:"baseUnit,omitempty"`

	// MergeLimit caps the number of merges to learn. If omitted,
	// the trainer runs until no pairs remain. Zero is valid and
	// produces a vocabulary of bare base units.
	MergeLimit *int `json:"mergeLimit,omitempty"`

	// MinWordFreq drops word forms rarer than the limit before
	// training starts. Values below 1 mean no filtering.
	MinWordFreq int `json:"minWordFreq,omitempty"`

	// MaxNumErrors if reached then the processing of a vertical
	// source stops
	MaxNumErrors int `json:"maxNumErrors,omitempty"`

	// Workers limits the parallelism of the initial pair counting
	// pass. Zero or less means one worker per CPU.
	Workers int `json:"workers,omitempty"`

	DB db.Conf `json:"db"`
}

// MergeLimitValue translates the optional merge limit into the
// trainer's convention where a negative value means no limit.
func (c *TrainConf) MergeLimitValue() int {
	if c.MergeLimit == nil {
		return -1
	}
	return *c.MergeLimit
}

func (c *TrainConf) Validate() error {
	if c.Corpus == "" {
		return fmt.Errorf("missing 'corpus'")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("no corpus sources defined")
	}
	for i, src := range c.Sources {
		if src.Path == "" {
			return fmt.Errorf("source %d has an empty path", i)
		}
		switch src.Format {
		case "", "plain", "vertical":
		default:
			return fmt.Errorf("source %d has an unknown format %q", i, src.Format)
		}
		if src.VertColumn < 0 {
			return fmt.Errorf("source %d has a negative vertical column", i)
		}
		for _, mod := range src.VertWordMods {
			if _, err := modders.ModderFactory(mod); err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
		}
	}
	if _, err := vocab.ParseBaseUnit(c.BaseUnit); err != nil {
		return err
	}
	if c.MergeLimit != nil && *c.MergeLimit < 0 {
		return fmt.Errorf("'mergeLimit' must not be negative")
	}
	return c.DB.Validate()
}

func LoadConf(confPath string) (*TrainConf, error) {
	rawData, err := os.ReadFile(confPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	var conf TrainConf
	if err := sonic.Unmarshal(rawData, &conf); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &conf, nil
}
