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

package factory

import (
	"fmt"

	"github.com/czcorpus/subvoc/db"
	"github.com/czcorpus/subvoc/db/mysql"
	"github.com/czcorpus/subvoc/db/sqlite"
	"github.com/czcorpus/subvoc/db/textfile"
)

type NullWriter struct {
}

func (nw *NullWriter) DatabaseExists() bool {
	return false
}

func (nw *NullWriter) Initialize(appendMode bool) error {
	return fmt.Errorf("no valid output writer installed")
}

func (nw *NullWriter) RemoveCorpus(corpusID string) (int, error) {
	return 0, fmt.Errorf("no valid output writer installed")
}

func (nw *NullWriter) PrepareInsert(table string, attrs []string) (db.InsertOperation, error) {
	return nil, fmt.Errorf("no valid output writer installed")
}

func (nw *NullWriter) Commit() error {
	return fmt.Errorf("no valid output writer installed")
}

func (nw *NullWriter) Rollback() error {
	return fmt.Errorf("no valid output writer installed")
}

func (nw *NullWriter) Close() {}

// NewWriter creates an output writer matching the configured
// backend type. An unknown type yields a NullWriter which fails
// on first use.
func NewWriter(conf db.Conf) (db.Writer, error) {
	switch conf.Type {
	case "sqlite":
		return &sqlite.Writer{
			Path:           conf.Name,
			PreconfQueries: conf.PreconfQueries,
		}, nil
	case "mysql":
		return mysql.NewWriter(conf)
	case "text":
		return &textfile.Writer{
			PathPrefix: conf.Name,
		}, nil
	default:
		return &NullWriter{}, nil
	}
}
