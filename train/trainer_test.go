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

package train

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/czcorpus/subvoc/symbol"
	"github.com/czcorpus/subvoc/vocab"
)

func newTestWords() (*symbol.Table, *vocab.WordList) {
	tbl := symbol.NewTable()
	wl := vocab.NewWordList(tbl, vocab.UnitChar)
	wl.Add("low", 5)
	wl.Add("lower", 2)
	wl.Add("newest", 6)
	wl.Add("widest", 3)
	return tbl, wl
}

func runTrainer(t *testing.T, wl *vocab.WordList, limit, workers int) *Trainer {
	tr := NewTrainer(context.Background(), wl, limit, workers, nil)
	assert.NoError(t, tr.Run())
	return tr
}

func recordTexts(tbl *symbol.Table, records []MergeRecord) [][2]string {
	ans := make([][2]string, len(records))
	for i, rec := range records {
		ans[i] = [2]string{tbl.Value(rec.Pair.Left), tbl.Value(rec.Pair.Right)}
	}
	return ans
}

func TestFirstMergesFollowFrequencyAndDiscoveryOrder(t *testing.T) {
	tbl, wl := newTestWords()
	tr := runTrainer(t, wl, 3, 1)

	records := tr.Records()
	assert.Equal(t, 3, len(records))

	// all three winners count 9; ties resolve to the pair seen first
	assert.Equal(t, "e", tbl.Value(records[0].Pair.Left))
	assert.Equal(t, "s", tbl.Value(records[0].Pair.Right))
	assert.Equal(t, "es", tbl.Value(records[0].Result))
	assert.Equal(t, 9, records[0].Frequency)

	assert.Equal(t, "t", tbl.Value(records[1].Pair.Left))
	assert.Equal(t, vocab.EndOfWord, tbl.Value(records[1].Pair.Right))
	assert.Equal(t, 9, records[1].Frequency)

	assert.Equal(t, "es", tbl.Value(records[2].Pair.Left))
	assert.Equal(t, "t"+vocab.EndOfWord, tbl.Value(records[2].Pair.Right))
	assert.Equal(t, "est"+vocab.EndOfWord, tbl.Value(records[2].Result))
	assert.Equal(t, 9, records[2].Frequency)

	assert.Equal(t, StateStoppedByLimit, tr.State())
}

func TestRanksAreSequential(t *testing.T) {
	_, wl := newTestWords()
	tr := runTrainer(t, wl, 5, 1)
	for i, rec := range tr.Records() {
		assert.Equal(t, i, rec.Rank)
	}
}

func TestZeroLimitStopsBeforeFirstMerge(t *testing.T) {
	_, wl := newTestWords()
	tr := runTrainer(t, wl, 0, 1)
	assert.Empty(t, tr.Records())
	assert.Equal(t, StateStoppedByLimit, tr.State())

	// with no merge applied, the vocabulary is the base alphabet
	rows := vocab.RankedSymbols(wl)
	texts := make(map[string]int)
	for _, row := range rows {
		texts[row.Text] = row.Frequency
	}
	// l, o, w, e, r, n, s, t, i, d + terminal marker
	assert.Equal(t, 11, len(rows))
	assert.Equal(t, 16, texts[vocab.EndOfWord])
	assert.Equal(t, 17, texts["e"]) // lower: 2, newest: 2x6, widest: 3
	assert.Equal(t, 7, texts["l"])
}

func TestEmptyCorpusCompletes(t *testing.T) {
	tbl := symbol.NewTable()
	wl := vocab.NewWordList(tbl, vocab.UnitChar)
	tr := runTrainer(t, wl, -1, 1)
	assert.Empty(t, tr.Records())
	assert.Equal(t, StateCompleted, tr.State())
}

func TestUnlimitedRunTerminates(t *testing.T) {
	_, wl := newTestWords()
	tr := runTrainer(t, wl, -1, 1)
	assert.Equal(t, StateCompleted, tr.State())

	// once no adjacent pair remains, each word is a single symbol
	wl.ForEach(func(id vocab.WordID, w *vocab.Word) {
		assert.Equal(t, 1, len(w.Seq))
	})
}

func TestUnlimitedRunEndsWithFullWords(t *testing.T) {
	tbl, wl := newTestWords()
	ids := make([]vocab.WordID, 0, wl.Size())
	wl.ForEach(func(id vocab.WordID, w *vocab.Word) { ids = append(ids, id) })
	runTrainer(t, wl, -1, 1)

	expected := []string{
		"low" + vocab.EndOfWord,
		"lower" + vocab.EndOfWord,
		"newest" + vocab.EndOfWord,
		"widest" + vocab.EndOfWord,
	}
	for i, id := range ids {
		assert.Equal(t, expected[i], tbl.Value(wl.Get(id).Seq[0]))
	}
}

func TestMergesNeverCrossWordBoundary(t *testing.T) {
	tbl, wl := newTestWords()
	tr := runTrainer(t, wl, -1, 1)
	for _, rec := range tr.Records() {
		left := tbl.Value(rec.Pair.Left)
		// the terminal marker may end a merged symbol but never
		// start or sit inside its left part
		assert.NotContains(t, left, vocab.EndOfWord)
	}
}

func TestMassDecreasesByMergeFrequency(t *testing.T) {
	_, wl := newTestWords()
	assert.Equal(t, 95, wl.TotalMass())
	tr := runTrainer(t, wl, -1, 1)

	mass := 95
	for _, rec := range tr.Records() {
		mass -= rec.Frequency
	}
	assert.Equal(t, mass, wl.TotalMass())
}

func TestDeterministicAcrossRunsAndWorkers(t *testing.T) {
	tbl1, wl1 := newTestWords()
	tr1 := runTrainer(t, wl1, -1, 1)
	tbl2, wl2 := newTestWords()
	tr2 := runTrainer(t, wl2, -1, 4)

	assert.Equal(
		t,
		recordTexts(tbl1, tr1.Records()),
		recordTexts(tbl2, tr2.Records()),
	)
}

func TestStatusChannelReportsFinalState(t *testing.T) {
	_, wl := newTestWords()
	statusChan := make(chan Status, 8)
	tr := NewTrainer(context.Background(), wl, 2, 1, statusChan)

	done := make(chan error, 1)
	go func() {
		done <- tr.Run()
		close(statusChan)
	}()
	var last Status
	for status := range statusChan {
		assert.NoError(t, status.Error)
		last = status
	}
	assert.NoError(t, <-done)
	assert.Equal(t, 2, last.NumMerges)
	assert.Equal(t, StateStoppedByLimit, tr.State())
}

func TestCancelledContextStopsTraining(t *testing.T) {
	_, wl := newTestWords()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewTrainer(ctx, wl, -1, 1, nil)
	err := tr.Run()
	assert.Error(t, err)
	assert.Equal(t, StateFailed, tr.State())
}

func TestFailedBuildReportsFailedState(t *testing.T) {
	tbl := symbol.NewTable()
	wl := vocab.NewWordList(tbl, vocab.UnitChar)
	wl.Add("low", 0) // non-positive frequency fails the counting pass
	tr := NewTrainer(context.Background(), wl, -1, 1, nil)
	err := tr.Run()
	assert.Error(t, err)
	assert.Equal(t, StateFailed, tr.State())
}

func TestSingleWordCorpus(t *testing.T) {
	tbl := symbol.NewTable()
	wl := vocab.NewWordList(tbl, vocab.UnitChar)
	wl.Add("aaa", 2)
	tr := runTrainer(t, wl, -1, 1)

	// "aaa</w>" with leftmost-greedy matching: (a,a) -> aa, a, </w>;
	// then (a,</w>) beats the newly discovered (aa,a) on equal counts
	records := recordTexts(tbl, tr.Records())
	assert.Equal(t, 3, len(records))
	assert.Equal(t, [2]string{"a", "a"}, records[0])
	assert.Equal(t, [2]string{"a", vocab.EndOfWord}, records[1])
	assert.Equal(t, [2]string{"aa", "a" + vocab.EndOfWord}, records[2])
	assert.Equal(t, StateCompleted, tr.State())
	assert.Equal(t, 1, len(wl.Get(0).Seq))
	assert.Equal(t, "aaa"+vocab.EndOfWord, tbl.Value(wl.Get(0).Seq[0]))
}
