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

package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/subvoc/db"
	"github.com/czcorpus/subvoc/fs"
)

// -------------------------------

// Writer stores trained vocabularies in a sqlite3 database file.
// All the inserts run within a single transaction which makes
// them a few orders of magnitude faster.
type Writer struct {
	database       *sql.DB
	tx             *sql.Tx
	Path           string
	PreconfQueries []string
}

func (w *Writer) DatabaseExists() bool {
	return fs.IsFile(w.Path)
}

func (w *Writer) Initialize(appendMode bool) error {
	var err error
	dbExisted := fs.IsFile(w.Path)
	w.database, err = openDatabase(w.Path)
	if err != nil {
		return err
	}
	log.Info().Msgf("Opened sqlite3 database %s", w.Path)

	if !appendMode {
		if dbExisted {
			log.
				Warn().
				Str("database", w.Path).
				Msg("The database already exists. Existing data will be deleted.")
			err := dropExisting(w.database)
			if err != nil {
				return err
			}
		}
		err := createSchema(w.database)
		if err != nil {
			return err
		}
	}

	var dbConf []string
	if len(w.PreconfQueries) > 0 {
		dbConf = w.PreconfQueries

	} else {
		log.Warn().Msg("No pre-configuration queries found, using default")
		dbConf = []string{
			"PRAGMA synchronous = OFF",
			"PRAGMA journal_mode = MEMORY",
		}
	}
	for _, cnf := range dbConf {
		log.Info().Str("value", cnf).Msg("Applying preconfiguration")
		w.database.Exec(cnf)
	}
	w.tx, err = w.database.Begin()
	return err
}

func (w *Writer) RemoveCorpus(corpusID string) (int, error) {
	if w.tx == nil {
		return 0, fmt.Errorf("cannot remove corpus data - no transaction active")
	}
	numRemoved := 0
	for _, table := range []string{db.SymbolTable, db.MergeTable} {
		res, err := w.tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE corpus_id = ?", table), corpusID)
		if err != nil {
			return 0, fmt.Errorf("failed to remove corpus %s from %s: %w", corpusID, table, err)
		}
		num, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to determine number of removed rows: %w", err)
		}
		numRemoved += int(num)
	}
	return numRemoved, nil
}

func (w *Writer) PrepareInsert(table string, attrs []string) (db.InsertOperation, error) {
	if w.tx == nil {
		return nil, fmt.Errorf("cannot prepare insert - no transaction active")
	}
	stmt, err := prepareInsert(w.tx, table, attrs)
	if err != nil {
		return nil, err
	}
	return &db.Insert{Stmt: stmt}, nil
}

func (w *Writer) Commit() error {
	return w.tx.Commit()
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback()
}

func (w *Writer) Close() {
	if w.database == nil {
		return
	}
	err := w.database.Close()
	if err != nil {
		log.Warn().Err(err).Msg("Error closing database")
	}
}
