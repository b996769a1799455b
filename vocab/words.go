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

package vocab

import (
	"fmt"

	"github.com/czcorpus/subvoc/symbol"
)

// EndOfWord is a terminal marker appended to each word during
// decomposition. It keeps word boundaries distinguishable so that
// no merge can ever fuse the last symbol of one word with the
// first symbol of another.
const EndOfWord = "</w>"

// BaseUnit determines the granularity of the initial word
// decomposition. It must be fixed before any word is added.
type BaseUnit int

const (
	// UnitChar splits words into Unicode code points.
	UnitChar BaseUnit = iota
	// UnitByte splits words into raw bytes.
	UnitByte
)

// ParseBaseUnit maps a configuration value to a BaseUnit.
func ParseBaseUnit(v string) (BaseUnit, error) {
	switch v {
	case "", "char":
		return UnitChar, nil
	case "byte":
		return UnitByte, nil
	}
	return UnitChar, fmt.Errorf("unknown base unit %q (expecting 'char' or 'byte')", v)
}

// WordID is a stable handle of a word within a WordList.
type WordID = int

// Word holds the current symbol decomposition of a distinct word
// form along with its corpus frequency. The sequence is rewritten
// by merges; the frequency never changes.
type Word struct {
	Seq  []symbol.Symbol
	Freq int
}

// Rewrite describes one in-place sequence replacement performed
// by ApplyMerge. Prev is the word's sequence as it was before the
// merge; the current sequence is available via the word handle.
type Rewrite struct {
	Word WordID
	Prev []symbol.Symbol
}

// WordList is an arena of Word entries addressed by stable integer
// handles. Entries are created once from the loaded corpus and then
// mutated in place by merges until training terminates.
type WordList struct {
	symbols *symbol.Table
	unit    BaseUnit
	words   []*Word
}

// Add decomposes a word into base-unit symbols plus the terminal
// marker and stores it with the provided corpus frequency. Words
// must be non-empty and frequencies positive - this is guaranteed
// by the corpus loader.
func (wl *WordList) Add(text string, freq int) WordID {
	var seq []symbol.Symbol
	switch wl.unit {
	case UnitByte:
		seq = make([]symbol.Symbol, 0, len(text)+1)
		for i := 0; i < len(text); i++ {
			seq = append(seq, wl.symbols.Intern(text[i:i+1]))
		}
	default:
		seq = make([]symbol.Symbol, 0, len(text)+1)
		for _, ch := range text {
			seq = append(seq, wl.symbols.Intern(string(ch)))
		}
	}
	seq = append(seq, wl.symbols.Intern(EndOfWord))
	wl.words = append(wl.words, &Word{Seq: seq, Freq: freq})
	return len(wl.words) - 1
}

// Get returns the word entry for a handle.
func (wl *WordList) Get(id WordID) *Word {
	return wl.words[id]
}

func (wl *WordList) Size() int {
	return len(wl.words)
}

// Symbols returns the intern table all the sequences refer to.
func (wl *WordList) Symbols() *symbol.Table {
	return wl.symbols
}

// ForEach calls fn on each word entry in handle order.
func (wl *WordList) ForEach(fn func(id WordID, w *Word)) {
	for i, w := range wl.words {
		fn(i, w)
	}
}

// ApplyMerge replaces every non-overlapping left-to-right occurrence
// of the adjacent pair (left, right) with the merged symbol in each
// of the listed words. After a replacement the scan resumes after the
// inserted symbol. Words in which no occurrence is found are skipped.
// The returned rewrites keep the pre-merge sequences so that pair
// statistics can be updated incrementally.
func (wl *WordList) ApplyMerge(ids []WordID, left, right, merged symbol.Symbol) []Rewrite {
	rewrites := make([]Rewrite, 0, len(ids))
	for _, id := range ids {
		w := wl.words[id]
		match := -1
		for i := 0; i < len(w.Seq)-1; i++ {
			if w.Seq[i] == left && w.Seq[i+1] == right {
				match = i
				break
			}
		}
		if match == -1 {
			continue
		}
		prev := w.Seq
		next := make([]symbol.Symbol, 0, len(prev)-1)
		next = append(next, prev[:match]...)
		i := match
		for i < len(prev) {
			if i+1 < len(prev) && prev[i] == left && prev[i+1] == right {
				next = append(next, merged)
				i += 2

			} else {
				next = append(next, prev[i])
				i++
			}
		}
		w.Seq = next
		rewrites = append(rewrites, Rewrite{Word: id, Prev: prev})
	}
	return rewrites
}

// TotalMass returns the corpus-weighted symbol occurrence mass,
// i.e. the sum over words of frequency times sequence length.
// Each applied merge occurrence decreases it by the word frequency.
func (wl *WordList) TotalMass() int {
	ans := 0
	for _, w := range wl.words {
		ans += w.Freq * len(w.Seq)
	}
	return ans
}

// NewWordList creates an empty word list decomposing added words
// at the provided granularity into the provided intern table.
func NewWordList(symbols *symbol.Table, unit BaseUnit) *WordList {
	return &WordList{
		symbols: symbols,
		unit:    unit,
		words:   make([]*Word, 0, 1024),
	}
}
