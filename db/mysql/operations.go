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

package mysql

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

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
		"CREATE TABLE vocab_symbol (" +
			"id INT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
			"corpus_id VARCHAR(127), " +
			"rank_idx INT, " +
			"symbol VARCHAR(255), " +
			"frequency INT)")
	if dbErr != nil {
		return fmt.Errorf("failed to create table 'vocab_symbol': %w", dbErr)
	}
	_, dbErr = database.Exec(
		"CREATE INDEX vocab_symbol_corpus_id_idx ON vocab_symbol(corpus_id)")
	if dbErr != nil {
		return fmt.Errorf("failed to create index vocab_symbol_corpus_id_idx: %w", dbErr)
	}
	_, dbErr = database.Exec(
		"CREATE TABLE merge_event (" +
			"id INT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
			"corpus_id VARCHAR(127), " +
			"rank_idx INT, " +
			"left_sym VARCHAR(255), " +
			"right_sym VARCHAR(255), " +
			"result_sym VARCHAR(255), " +
			"frequency INT)")
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
