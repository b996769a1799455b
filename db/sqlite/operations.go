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

/*
This file contains all the database operations required to create
a proper schema for the trained vocabulary (tables and indices)
*/

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3" // load the driver
)

// openDatabase opens a sqlite3 database specified by
// its filesystem path.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary db: %w", err)
	}
	return db, nil
}

// prepareInsert creates a prepared statement for an INSERT
// operation.
func prepareInsert(database *sql.Tx, table string, cols []string) (*sql.Stmt, error) {
	valReplac := make([]string, len(cols))
	for i := range cols {
		valReplac[i] = "?"
	}
	ans, err := database.Prepare(
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, joinArgs(cols), joinArgs(valReplac)))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare INSERT: %w", err)
	}
	return ans, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, ", ")
}

// dropExisting drops existing tables. It is safe to call this
// even if one or more of these does not exist.
func dropExisting(database *sql.DB) error {
	log.Info().Msg("Attempting to drop possible existing tables")
	var err error
	_, err = database.Exec("DROP TABLE IF EXISTS vocab_symbol")
	if err != nil {
		return fmt.Errorf("failed to drop table 'vocab_symbol': %w", err)
	}
	_, err = database.Exec("DROP TABLE IF EXISTS merge_event")
	if err != nil {
		return fmt.Errorf("failed to drop table 'merge_event': %w", err)
	}
	return nil
}

// createSchema creates all the required tables and indices
func createSchema(database *sql.DB) error {
	log.Info().Msg("Attempting to create tables and indices")

	var dbErr error
	_, dbErr = database.Exec(
		"CREATE TABLE vocab_symbol (id INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"corpus_id TEXT, rank_idx INTEGER, symbol TEXT, frequency INTEGER)")
	if dbErr != nil {
		return fmt.Errorf("failed to create table 'vocab_symbol': %w", dbErr)
	}
	_, dbErr = database.Exec(
		"CREATE INDEX vocab_symbol_corpus_id_idx ON vocab_symbol(corpus_id)")
	if dbErr != nil {
		return fmt.Errorf("failed to create index vocab_symbol_corpus_id_idx: %w", dbErr)
	}
	_, dbErr = database.Exec(
		"CREATE TABLE merge_event (id INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"corpus_id TEXT, rank_idx INTEGER, left_sym TEXT, right_sym TEXT, " +
			"result_sym TEXT, frequency INTEGER)")
	if dbErr != nil {
		return fmt.Errorf("failed to create table 'merge_event': %w", dbErr)
	}
	_, dbErr = database.Exec(
		"CREATE INDEX merge_event_corpus_id_idx ON merge_event(corpus_id)")
	if dbErr != nil {
		return fmt.Errorf("failed to create index merge_event_corpus_id_idx: %w", dbErr)
	}
	return nil
}
