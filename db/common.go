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

// Package db defines the interface between the vocabulary trainer
// and its storage backends along with shared table definitions.
package db

import (
	"database/sql"
	"fmt"
)

const (
	// SymbolTable stores the final ranked subword vocabulary.
	SymbolTable = "vocab_symbol"
	// MergeTable stores the learned merge operations in rank order.
	MergeTable = "merge_event"
)

var (
	// SymbolCols is the column list used when inserting vocabulary rows.
	SymbolCols = []string{"corpus_id", "rank_idx", "symbol", "frequency"}
	// MergeCols is the column list used when inserting merge rows.
	MergeCols = []string{"corpus_id", "rank_idx", "left_sym", "right_sym", "result_sym", "frequency"}
)

// Conf configures the output storage of a training task.
type Conf struct {
	// Type is one of "sqlite", "mysql", "text".
	Type string `json:"type"`

	// Name is a database name (mysql), a database file path (sqlite)
	// or an output path prefix (text).
	Name string `json:"name"`

	Host           string   `json:"host,omitempty"`
	User           string   `json:"user,omitempty"`
	Password       string   `json:"password,omitempty"`
	PreconfQueries []string `json:"preconfSettings,omitempty"`
}

func (c *Conf) Validate() error {
	switch c.Type {
	case "sqlite", "mysql", "text":
	default:
		return fmt.Errorf("unknown db type %q (expecting 'sqlite', 'mysql' or 'text')", c.Type)
	}
	if c.Name == "" {
		return fmt.Errorf("missing db 'name'")
	}
	return nil
}

// Writer is a target for the trained vocabulary and merge log.
// Implementations are transactional where the backend allows it -
// nothing is visible to readers before Commit.
type Writer interface {
	DatabaseExists() bool
	Initialize(appendMode bool) error

	// RemoveCorpus drops previously stored rows of a corpus so that
	// a repeated run in append mode does not duplicate them.
	RemoveCorpus(corpusID string) (int, error)

	PrepareInsert(table string, attrs []string) (InsertOperation, error)
	Commit() error
	Rollback() error
	Close()
}

type InsertOperation interface {
	Exec(values ...any) error
}

// Insert wraps a prepared SQL statement as an InsertOperation.
type Insert struct {
	Stmt *sql.Stmt
}

func (ins *Insert) Exec(values ...any) error {
	_, err := ins.Stmt.Exec(values...)
	return err
}
