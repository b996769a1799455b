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

// Package train drives the byte-pair-encoding learning loop: it
// repeatedly selects the most frequent adjacent symbol pair, merges
// it into a new composite symbol across all affected words and
// updates the pair statistics incrementally.
package train

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/subvoc/pairstat"
	"github.com/czcorpus/subvoc/symbol"
	"github.com/czcorpus/subvoc/vocab"
)

const (
	statusChunkSize = 100
	logChunkSize    = 1000
)

// State describes the trainer's position in its lifecycle.
// StateCompleted and StateStoppedByLimit are the successful terminal
// states; StateFailed marks a run that returned an error.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateStoppedByLimit
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateStoppedByLimit:
		return "stoppedByLimit"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// MergeRecord is the immutable log entry of one merge step. The
// ordered sequence of merge records is the learned vocabulary's
// defining artifact.
type MergeRecord struct {
	Pair      pairstat.Pair
	Result    symbol.Symbol
	Rank      int
	Frequency int
}

// Status stores basic information about training progress.
// It is sent through the status channel during the run.
type Status struct {
	Datetime  time.Time
	File      string
	NumMerges int
	NumPairs  int
	Error     error
}

// Trainer owns the word list and the pair table for the duration
// of the learning loop. The loop is strictly sequential - each step
// depends on the table state produced by the previous one - so no
// external mutation of either structure is permitted while running.
type Trainer struct {
	ctx        context.Context
	symbols    *symbol.Table
	words      *vocab.WordList
	pairs      *pairstat.Table
	limit      int
	workers    int
	state      State
	records    []MergeRecord
	statusChan chan<- Status
}

// NewTrainer creates a trainer over an initialized word list.
// A negative limit means running until no pairs remain; a limit of
// zero is valid and stops the trainer before the first merge.
func NewTrainer(
	ctx context.Context,
	words *vocab.WordList,
	limit int,
	workers int,
	statusChan chan<- Status,
) *Trainer {
	return &Trainer{
		ctx:        ctx,
		symbols:    words.Symbols(),
		words:      words,
		pairs:      pairstat.NewTable(),
		limit:      limit,
		workers:    workers,
		state:      StateIdle,
		statusChan: statusChan,
	}
}

func (t *Trainer) State() State {
	return t.state
}

// Records returns the merge records accumulated so far, in rank order.
func (t *Trainer) Records() []MergeRecord {
	return t.records
}

// Words exposes the trained word list (e.g. for vocabulary export).
// It must not be used while the trainer is running.
func (t *Trainer) Words() *vocab.WordList {
	return t.words
}

func (t *Trainer) sendStatus() {
	if t.statusChan == nil {
		return
	}
	t.statusChan <- Status{
		Datetime:  time.Now(),
		NumMerges: len(t.records),
		NumPairs:  t.pairs.Len(),
	}
}

// step performs a single merge. The second return value is false
// when no pair remains and the trainer is complete.
func (t *Trainer) step() (bool, error) {
	pair, freq, ok := t.pairs.Top()
	if !ok {
		return false, nil
	}
	merged := t.symbols.Concat(pair.Left, pair.Right)
	ids := t.pairs.WordsWith(pair)
	rewrites := t.words.ApplyMerge(ids, pair.Left, pair.Right, merged)
	if len(rewrites) != len(ids) {
		return false, fmt.Errorf(
			"pair table desynchronized: pair (%s, %s) tracked in %d words but found in %d",
			t.symbols.Value(pair.Left), t.symbols.Value(pair.Right), len(ids), len(rewrites))
	}
	if err := t.pairs.ApplyRewrites(t.words, rewrites); err != nil {
		return false, err
	}
	if rest := t.pairs.Count(pair); rest != 0 {
		return false, fmt.Errorf(
			"pair table desynchronized: pair (%s, %s) still counts %d after its merge",
			t.symbols.Value(pair.Left), t.symbols.Value(pair.Right), rest)
	}
	t.records = append(t.records, MergeRecord{
		Pair:      pair,
		Result:    merged,
		Rank:      len(t.records),
		Frequency: freq,
	})
	return true, nil
}

// Run executes the learning loop until no pairs remain, the merge
// limit is reached or the context is cancelled. Cancellation is
// honored only at step boundaries so the merge record sequence is
// never left in a partially applied state.
func (t *Trainer) Run() error {
	t.state = StateRunning
	if err := t.pairs.Build(t.words, t.workers); err != nil {
		t.state = StateFailed
		return err
	}
	log.Info().
		Int("words", t.words.Size()).
		Int("pairs", t.pairs.Len()).
		Msg("built initial pair statistics")
	for {
		select {
		case <-t.ctx.Done():
			t.state = StateFailed
			return fmt.Errorf("received stop signal: %s", t.ctx.Err())
		default:
		}
		if t.limit >= 0 && len(t.records) >= t.limit {
			t.state = StateStoppedByLimit
			break
		}
		proceeded, err := t.step()
		if err != nil {
			t.state = StateFailed
			return err
		}
		if !proceeded {
			t.state = StateCompleted
			break
		}
		if len(t.records)%statusChunkSize == 0 {
			t.sendStatus()
		}
		if len(t.records)%logChunkSize == 0 {
			last := t.records[len(t.records)-1]
			log.Info().
				Int("numMerges", len(t.records)).
				Int("numPairs", t.pairs.Len()).
				Str("lastMerge", t.symbols.Value(last.Result)).
				Msg("next chunk of merges done")
		}
	}
	t.sendStatus()
	log.Info().
		Int("numMerges", len(t.records)).
		Str("state", t.state.String()).
		Msg("training finished")
	return nil
}
