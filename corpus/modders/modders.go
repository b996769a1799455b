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

// Package modders provides configurable word form normalization
// applied before the forms enter the training dictionary.
package modders

import (
	"fmt"
	"strings"
)

// Modder represents a type which is able
// to modify a string (e.g. to lowercase it)
type Modder interface {
	Mod(s string) string
}

type ToLower struct{}

func (m ToLower) Mod(s string) string {
	return strings.ToLower(s)
}

type Trim struct{}

func (m Trim) Mod(s string) string {
	return strings.TrimSpace(s)
}

type Identity struct{}

func (m Identity) Mod(s string) string {
	return s
}

type ModderChain struct {
	fn []Modder
}

func NewModderChain(fn []Modder) *ModderChain {
	return &ModderChain{fn: fn}
}

func (m *ModderChain) Mod(s string) string {
	ans := s
	for _, mod := range m.fn {
		ans = mod.Mod(ans)
	}
	return ans
}

func ModderFactory(name string) (Modder, error) {
	switch name {
	case "toLower":
		return ToLower{}, nil
	case "trim":
		return Trim{}, nil
	case "":
		return Identity{}, nil
	}
	return nil, fmt.Errorf("unknown modder function %q", name)
}

// NewChainFromNames creates a modder chain out of a list of
// function names (see ModderFactory for the supported values).
func NewChainFromNames(names []string) (*ModderChain, error) {
	fn := make([]Modder, len(names))
	for i, name := range names {
		mod, err := ModderFactory(name)
		if err != nil {
			return nil, err
		}
		fn[i] = mod
	}
	return NewModderChain(fn), nil
}
