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

// Package textfile provides a plain-text output backend. The ranked
// vocabulary goes into a '[prefix]-symbols.txt' file with one
// 'frequency symbol' line per symbol and the learned merges into
// a '[prefix]-merges.txt' file, both in rank order.
package textfile

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/subvoc/db"
	"github.com/czcorpus/subvoc/fs"
)

// Writer stores trained vocabularies as plain text files.
// Unlike the SQL backends, it has no transaction support -
// Commit flushes the buffers and Rollback merely closes the
// files, leaving possibly partial output behind.
type Writer struct {
	PathPrefix string

	symbolsFile *os.File
	mergesFile  *os.File
	symbols     *bufio.Writer
	merges      *bufio.Writer
}

func (w *Writer) symbolsPath() string {
	return w.PathPrefix + "-symbols.txt"
}

func (w *Writer) mergesPath() string {
	return w.PathPrefix + "-merges.txt"
}

func (w *Writer) DatabaseExists() bool {
	return fs.IsFile(w.symbolsPath())
}

func (w *Writer) Initialize(appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND

	} else {
		flags |= os.O_TRUNC
	}
	var err error
	w.symbolsFile, err = os.OpenFile(w.symbolsPath(), flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open symbols file: %w", err)
	}
	w.mergesFile, err = os.OpenFile(w.mergesPath(), flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open merges file: %w", err)
	}
	w.symbols = bufio.NewWriter(w.symbolsFile)
	w.merges = bufio.NewWriter(w.mergesFile)
	log.Info().
		Str("symbols", w.symbolsPath()).
		Str("merges", w.mergesPath()).
		Msg("Opened text output files")
	return nil
}

func (w *Writer) RemoveCorpus(corpusID string) (int, error) {
	log.Warn().
		Str("corpusId", corpusID).
		Msg("the text backend cannot remove previously written corpus data")
	return 0, nil
}

// lineInsert formats incoming rows as text lines. The value
// indices to print are resolved from the column list once,
// at PrepareInsert time.
type lineInsert struct {
	out     *bufio.Writer
	format  string
	indices []int
}

func (ins *lineInsert) Exec(values ...any) error {
	args := make([]any, len(ins.indices))
	for i, idx := range ins.indices {
		if idx >= len(values) {
			return fmt.Errorf("expected at least %d values, got %d", idx+1, len(values))
		}
		args[i] = values[idx]
	}
	_, err := fmt.Fprintf(ins.out, ins.format, args...)
	return err
}

func colIndices(attrs []string, wanted ...string) ([]int, error) {
	ans := make([]int, len(wanted))
	for i, name := range wanted {
		ans[i] = -1
		for j, attr := range attrs {
			if attr == name {
				ans[i] = j
				break
			}
		}
		if ans[i] == -1 {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return ans, nil
}

func (w *Writer) PrepareInsert(table string, attrs []string) (db.InsertOperation, error) {
	if w.symbols == nil {
		return nil, fmt.Errorf("cannot prepare insert - writer not initialized")
	}
	switch table {
	case db.SymbolTable:
		indices, err := colIndices(attrs, "frequency", "symbol")
		if err != nil {
			return nil, fmt.Errorf("failed to prepare symbol output: %w", err)
		}
		return &lineInsert{out: w.symbols, format: "%-12d %s\n", indices: indices}, nil
	case db.MergeTable:
		indices, err := colIndices(attrs, "rank_idx", "left_sym", "right_sym", "result_sym", "frequency")
		if err != nil {
			return nil, fmt.Errorf("failed to prepare merge output: %w", err)
		}
		return &lineInsert{out: w.merges, format: "%d\t%s %s\t%s\t%d\n", indices: indices}, nil
	}
	return nil, fmt.Errorf("unknown output table %q", table)
}

func (w *Writer) Commit() error {
	if err := w.symbols.Flush(); err != nil {
		return fmt.Errorf("failed to flush symbols file: %w", err)
	}
	if err := w.merges.Flush(); err != nil {
		return fmt.Errorf("failed to flush merges file: %w", err)
	}
	return nil
}

func (w *Writer) Rollback() error {
	log.Warn().Msg("rolling back text output - already flushed lines are kept")
	return nil
}

func (w *Writer) Close() {
	if w.symbolsFile != nil {
		if err := w.symbolsFile.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing symbols file")
		}
	}
	if w.mergesFile != nil {
		if err := w.mergesFile.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing merges file")
		}
	}
}
