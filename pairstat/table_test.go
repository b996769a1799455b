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

package pairstat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/czcorpus/subvoc/symbol"
	"github.com/czcorpus/subvoc/vocab"
)

// newTestWords creates the standard small corpus used throughout
// the tests: low:5, lower:2, newest:6, widest:3.
func newTestWords() (*symbol.Table, *vocab.WordList) {
	tbl := symbol.NewTable()
	wl := vocab.NewWordList(tbl, vocab.UnitChar)
	wl.Add("low", 5)
	wl.Add("lower", 2)
	wl.Add("newest", 6)
	wl.Add("widest", 3)
	return tbl, wl
}

func pairOf(tbl *symbol.Table, left, right string) Pair {
	return Pair{Left: tbl.Intern(left), Right: tbl.Intern(right)}
}

// recount builds a fresh table from the current word list state.
// It serves as the ground truth for incremental update tests.
func recount(t *testing.T, wl *vocab.WordList) *Table {
	fresh := NewTable()
	err := fresh.Build(wl, 1)
	assert.NoError(t, err)
	return fresh
}

func TestBuildCounts(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	err := pt.Build(wl, 1)
	assert.NoError(t, err)

	assert.Equal(t, 7, pt.Count(pairOf(tbl, "l", "o")))
	assert.Equal(t, 7, pt.Count(pairOf(tbl, "o", "w")))
	assert.Equal(t, 5, pt.Count(pairOf(tbl, "w", vocab.EndOfWord)))
	assert.Equal(t, 8, pt.Count(pairOf(tbl, "w", "e")))
	assert.Equal(t, 9, pt.Count(pairOf(tbl, "e", "s")))
	assert.Equal(t, 9, pt.Count(pairOf(tbl, "s", "t")))
	assert.Equal(t, 9, pt.Count(pairOf(tbl, "t", vocab.EndOfWord)))
	assert.Equal(t, 0, pt.Count(pairOf(tbl, "z", "z")))
}

func TestBuildEmptyWordList(t *testing.T) {
	tbl := symbol.NewTable()
	wl := vocab.NewWordList(tbl, vocab.UnitChar)
	pt := NewTable()
	err := pt.Build(wl, 4)
	assert.NoError(t, err)
	_, _, ok := pt.Top()
	assert.False(t, ok)
	assert.Equal(t, 0, pt.Len())
}

func TestTopPrefersHighestCount(t *testing.T) {
	tbl := symbol.NewTable()
	wl := vocab.NewWordList(tbl, vocab.UnitChar)
	wl.Add("ab", 3)
	wl.Add("cd", 7)
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	top, count, ok := pt.Top()
	assert.True(t, ok)
	assert.Equal(t, pairOf(tbl, "c", "d"), top)
	assert.Equal(t, 7, count)
}

func TestTopTieBrokenByDiscoveryOrder(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	// (e, s), (s, t) and (t, </w>) all count 9; (e, s) is seen first
	top, count, ok := pt.Top()
	assert.True(t, ok)
	assert.Equal(t, pairOf(tbl, "e", "s"), top)
	assert.Equal(t, 9, count)
}

func TestBuildIndependentOfWorkerCount(t *testing.T) {
	tbl, wl := newTestWords()
	single := NewTable()
	assert.NoError(t, single.Build(wl, 1))
	parallel := NewTable()
	assert.NoError(t, parallel.Build(wl, 4))

	topS, countS, okS := single.Top()
	topP, countP, okP := parallel.Top()
	assert.Equal(t, okS, okP)
	assert.Equal(t, topS, topP)
	assert.Equal(t, countS, countP)
	assert.Equal(t, single.Len(), parallel.Len())
	assert.Equal(t, 9, countS)
	assert.Equal(t, pairOf(tbl, "e", "s"), topS)
}

func TestWordsWith(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	assert.Equal(t, []int{2, 3}, pt.WordsWith(pairOf(tbl, "e", "s")))
	assert.Equal(t, []int{0, 1}, pt.WordsWith(pairOf(tbl, "l", "o")))
	assert.Nil(t, pt.WordsWith(pairOf(tbl, "z", "z")))
}

func TestApplyRewritesMatchesFreshRecount(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	p := pairOf(tbl, "e", "s")
	merged := tbl.Concat(p.Left, p.Right)
	ids := pt.WordsWith(p)
	rewrites := wl.ApplyMerge(ids, p.Left, p.Right, merged)
	assert.NoError(t, pt.ApplyRewrites(wl, rewrites))

	fresh := recount(t, wl)
	wl.ForEach(func(id vocab.WordID, w *vocab.Word) {
		for i := 0; i+1 < len(w.Seq); i++ {
			q := Pair{Left: w.Seq[i], Right: w.Seq[i+1]}
			assert.Equal(t, fresh.Count(q), pt.Count(q),
				"count mismatch for pair (%s, %s)",
				tbl.Value(q.Left), tbl.Value(q.Right))
		}
	})
	assert.Equal(t, fresh.Len(), pt.Len())
}

func TestApplyRewritesRetiresMergedPair(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	p := pairOf(tbl, "e", "s")
	merged := tbl.Concat(p.Left, p.Right)
	rewrites := wl.ApplyMerge(pt.WordsWith(p), p.Left, p.Right, merged)
	assert.NoError(t, pt.ApplyRewrites(wl, rewrites))

	assert.Equal(t, 0, pt.Count(p))
	// (s, t) occurred only with 'e' preceding, so it is retired too
	assert.Equal(t, 0, pt.Count(pairOf(tbl, "s", "t")))
	// new neighborhood pairs appear with the expected weights
	assert.Equal(t, 9, pt.Count(Pair{Left: merged, Right: tbl.Intern("t")}))
	assert.Equal(t, 6, pt.Count(Pair{Left: tbl.Intern("w"), Right: merged}))
	assert.Equal(t, 3, pt.Count(Pair{Left: tbl.Intern("d"), Right: merged}))
}

func TestApplyRewritesUpdatesWordSets(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	p := pairOf(tbl, "e", "s")
	merged := tbl.Concat(p.Left, p.Right)
	rewrites := wl.ApplyMerge(pt.WordsWith(p), p.Left, p.Right, merged)
	assert.NoError(t, pt.ApplyRewrites(wl, rewrites))

	assert.Empty(t, pt.WordsWith(p))
	assert.Equal(t, []int{2, 3}, pt.WordsWith(Pair{Left: merged, Right: tbl.Intern("t")}))
}

func TestTopSkipsStaleCandidates(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	p := pairOf(tbl, "e", "s")
	merged := tbl.Concat(p.Left, p.Right)
	rewrites := wl.ApplyMerge(pt.WordsWith(p), p.Left, p.Right, merged)
	assert.NoError(t, pt.ApplyRewrites(wl, rewrites))

	// (t, </w>) still counts 9 and was discovered before the new
	// (es, t) pair, so it wins the next round
	top, count, ok := pt.Top()
	assert.True(t, ok)
	assert.Equal(t, pairOf(tbl, "t", vocab.EndOfWord), top)
	assert.Equal(t, 9, count)
}

func TestApplyRewritesDetectsDesync(t *testing.T) {
	tbl, wl := newTestWords()
	pt := NewTable()
	assert.NoError(t, pt.Build(wl, 1))

	// a rewrite referring to a sequence the table never saw
	bogus := []vocab.Rewrite{
		{Word: 0, Prev: []symbol.Symbol{tbl.Intern("x"), tbl.Intern("y")}},
	}
	err := pt.ApplyRewrites(wl, bogus)
	assert.Error(t, err)
}
