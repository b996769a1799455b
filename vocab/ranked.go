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
	"sort"

	"github.com/czcorpus/subvoc/symbol"
)

// SymbolFreq is one row of the exported vocabulary - a symbol
// along with its frequency-weighted occurrence count over the
// final state of all word sequences.
type SymbolFreq struct {
	Symbol    symbol.Symbol
	Text      string
	Frequency int
}

// RankedSymbols aggregates the frequency of every symbol currently
// present in the word list and returns the rows sorted by descending
// frequency. Equal frequencies are ordered by ascending symbol handle,
// i.e. by first appearance, which keeps the output reproducible.
func RankedSymbols(wl *WordList) []SymbolFreq {
	counts := make(map[symbol.Symbol]int)
	order := make([]symbol.Symbol, 0, wl.Symbols().Size())
	wl.ForEach(func(id WordID, w *Word) {
		for _, s := range w.Seq {
			if _, ok := counts[s]; !ok {
				order = append(order, s)
			}
			counts[s] += w.Freq
		}
	})
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	ans := make([]SymbolFreq, len(order))
	for i, s := range order {
		ans[i] = SymbolFreq{
			Symbol:    s,
			Text:      wl.Symbols().Value(s),
			Frequency: counts[s],
		}
	}
	sort.SliceStable(ans, func(i, j int) bool {
		return ans[i].Frequency > ans[j].Frequency
	})
	return ans
}
