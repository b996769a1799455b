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
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/subvoc/db"

	"github.com/go-sql-driver/mysql"
)

func joinArgs(args []string) string {
	return strings.Join(args, ", ")
}

// Writer stores trained vocabularies in a MySQL database shared
// by multiple corpora (rows are distinguished by corpus_id).
type Writer struct {
	database *sql.DB
	tx       *sql.Tx
	dbName   string
}

func (w *Writer) DatabaseExists() bool {
	row := w.database.QueryRow(
		`SELECT COUNT(*) > 0 FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		w.dbName, db.SymbolTable,
	)
	var ans bool
	err := row.Scan(&ans)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to test data storage existence")
		return false
	}
	return ans
}

func (w *Writer) Initialize(appendMode bool) error {
	var err error
	dbExisted := w.DatabaseExists()
	if !appendMode {
		if dbExisted {
			log.
				Warn().
				Str("storageName", w.dbName).
				Msg("The data storage already exists. Existing data will be deleted.")
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
			fmt.Sprintf("DELETE FROM `%s` WHERE corpus_id = ?", table), corpusID)
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
		return nil, fmt.Errorf("cannot prepare insert into %s - no transaction active", table)
	}
	valReplac := make([]string, len(attrs))
	for i := range attrs {
		valReplac[i] = "?"
	}
	stmt, err := w.tx.Prepare(
		fmt.Sprintf(
			"INSERT INTO `%s` (%s) VALUES (%s)",
			table,
			joinArgs(attrs),
			joinArgs(valReplac),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare INSERT into %s: %w", table, err)
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
		log.Warn().Err(err).Msg("error closing database")
	}
}

func NewWriter(conf db.Conf) (*Writer, error) {
	mconf := mysql.NewConfig()
	mconf.Net = "tcp"
	mconf.Addr = conf.Host
	mconf.User = conf.User
	mconf.Passwd = conf.Password
	mconf.DBName = conf.Name
	mconf.ParseTime = true
	mconf.Loc = time.Local
	database, err := sql.Open("mysql", mconf.FormatDSN())
	if err != nil {
		return nil, err
	}
	return &Writer{
		database: database,
		dbName:   conf.Name,
	}, nil
}
