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

// Package pairstat maintains frequency-weighted counts of adjacent
// symbol pairs over all word sequences. The counts always reflect
// the current state of the sequences - after a merge, only the
// neighborhood of each affected word is touched, the table is never
// rebuilt from scratch.
package pairstat

import (
	"container/heap"
	"fmt"
	"runtime"

	"github.com/czcorpus/cnc-gokit/collections"
	"golang.org/x/sync/errgroup"

	"github.com/czcorpus/subvoc/symbol"
	"github.com/czcorpus/subvoc/vocab"
)

// Pair represents two symbols adjacent in some word's current
// decomposition. Position matters - (a, b) and (b, a) are distinct.
type Pair struct {
	Left  symbol.Symbol
	Right symbol.Symbol
}

// entry keeps the aggregate count of a pair, its discovery sequence
// number (used for deterministic tie-breaking) and the set of word
// handles whose sequences currently contain the pair.
type entry struct {
	count int
	seq   int
	words *collections.Set[int]
}

// Table aggregates, across all words, the frequency-weighted count
// of every adjacent symbol pair. The maximum is tracked by a lazily
// invalidated max-heap of (pair, count) candidates - stale candidates
// are discarded when encountered at the top.
type Table struct {
	entries map[Pair]*entry
	queue   candidateQueue
	nextSeq int
	numLive int
}

// ensure returns the entry of a pair, creating it with the next
// discovery sequence number if needed. Sequence numbers are never
// reused, so ties between equally frequent pairs always resolve
// to the earlier-discovered one.
func (t *Table) ensure(p Pair) *entry {
	e, ok := t.entries[p]
	if !ok {
		e = &entry{seq: t.nextSeq, words: collections.NewSet[int]()}
		t.nextSeq++
		t.entries[p] = e
	}
	return e
}

func (t *Table) push(p Pair, e *entry) {
	heap.Push(&t.queue, candidate{pair: p, count: e.count, seq: e.seq})
}

func (t *Table) applyDelta(p Pair, e *entry, delta int) error {
	was := e.count
	e.count += delta
	if e.count < 0 {
		return fmt.Errorf(
			"pair table desynchronized: count of pair (%d, %d) dropped below zero",
			p.Left, p.Right)
	}
	if was > 0 && e.count == 0 {
		t.numLive--

	} else if was == 0 && e.count > 0 {
		t.numLive++
	}
	if e.count > 0 && e.count != was {
		t.push(p, e)
	}
	return nil
}

// shardStats is a partial pair count produced by one Build worker.
// Discovery order is recorded so that the combined table assigns
// sequence numbers independently of the number of workers.
type shardStats struct {
	counts  map[Pair]int
	order   []Pair
	wordIDs map[Pair][]int
}

func countShard(wl *vocab.WordList, lo, hi int) (*shardStats, error) {
	st := &shardStats{
		counts:  make(map[Pair]int),
		wordIDs: make(map[Pair][]int),
	}
	for id := lo; id < hi; id++ {
		w := wl.Get(id)
		if len(w.Seq) == 0 {
			return nil, fmt.Errorf("word %d has an empty symbol sequence", id)
		}
		if w.Freq <= 0 {
			return nil, fmt.Errorf("word %d has a non-positive frequency %d", id, w.Freq)
		}
		for i := 0; i+1 < len(w.Seq); i++ {
			p := Pair{Left: w.Seq[i], Right: w.Seq[i+1]}
			if _, ok := st.counts[p]; !ok {
				st.order = append(st.order, p)
			}
			st.counts[p] += w.Freq
			ids := st.wordIDs[p]
			if len(ids) == 0 || ids[len(ids)-1] != id {
				st.wordIDs[p] = append(ids, id)
			}
		}
	}
	return st, nil
}

// Build populates the table from the initial state of the word list.
// The counting pass is data-parallel across contiguous word ranges;
// partial results are combined in shard order, which keeps pair
// discovery order (and therefore tie-breaking) identical to a
// single-threaded pass. workers <= 0 means one worker per CPU.
func (t *Table) Build(wl *vocab.WordList, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > wl.Size() {
		workers = wl.Size()
	}
	if workers < 1 {
		workers = 1
	}
	shards := make([]*shardStats, workers)
	chunk := (wl.Size() + workers - 1) / workers
	var eg errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		lo := i * chunk
		hi := lo + chunk
		if hi > wl.Size() {
			hi = wl.Size()
		}
		eg.Go(func() error {
			st, err := countShard(wl, lo, hi)
			if err != nil {
				return err
			}
			shards[i] = st
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to build pair statistics: %w", err)
	}
	for _, st := range shards {
		for _, p := range st.order {
			e := t.ensure(p)
			e.count += st.counts[p]
			for _, id := range st.wordIDs[p] {
				e.words.Add(id)
			}
		}
	}
	for p, e := range t.entries {
		if e.count > 0 {
			t.numLive++
			t.push(p, e)
		}
	}
	return nil
}

// Top returns the pair with the greatest aggregate count along with
// the count itself. Ties are broken by discovery order. The third
// return value is false when no pair with a positive count remains.
func (t *Table) Top() (Pair, int, bool) {
	for t.queue.Len() > 0 {
		c := t.queue.items[0]
		e := t.entries[c.pair]
		if e != nil && e.count == c.count && e.count > 0 {
			return c.pair, c.count, true
		}
		heap.Pop(&t.queue)
	}
	return Pair{}, 0, false
}

// Count returns the current aggregate count of a pair
// (zero for pairs the table has never seen or fully retired).
func (t *Table) Count(p Pair) int {
	e, ok := t.entries[p]
	if !ok {
		return 0
	}
	return e.count
}

// Len returns the number of pairs with a positive count.
func (t *Table) Len() int {
	return t.numLive
}

// WordsWith returns the handles of all words whose current sequence
// contains the pair, in ascending order.
func (t *Table) WordsWith(p Pair) []int {
	e, ok := t.entries[p]
	if !ok {
		return nil
	}
	return e.words.ToOrderedSlice()
}

// ApplyRewrites updates the table incrementally after a merge. For
// each rewritten word, the pairs of the pre-merge sequence are
// decremented and the pairs of the current sequence incremented,
// weighted by the word's frequency. Only pairs occurring in affected
// words are ever touched. A decrement of an untracked pair or a
// count dropping below zero indicates a desynchronization between
// the word list and the table and is reported as an error.
func (t *Table) ApplyRewrites(wl *vocab.WordList, rewrites []vocab.Rewrite) error {
	for _, rw := range rewrites {
		w := wl.Get(rw.Word)
		for i := 0; i+1 < len(rw.Prev); i++ {
			p := Pair{Left: rw.Prev[i], Right: rw.Prev[i+1]}
			e, ok := t.entries[p]
			if !ok {
				return fmt.Errorf(
					"pair table desynchronized: pair (%d, %d) of word %d is not tracked",
					p.Left, p.Right, rw.Word)
			}
			if err := t.applyDelta(p, e, -w.Freq); err != nil {
				return err
			}
			e.words.Remove(rw.Word)
		}
		for i := 0; i+1 < len(w.Seq); i++ {
			p := Pair{Left: w.Seq[i], Right: w.Seq[i+1]}
			e := t.ensure(p)
			if err := t.applyDelta(p, e, w.Freq); err != nil {
				return err
			}
			e.words.Add(rw.Word)
		}
	}
	return nil
}

func NewTable() *Table {
	return &Table{
		entries: make(map[Pair]*entry),
	}
}
