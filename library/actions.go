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

package library

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/subvoc/cnf"
	"github.com/czcorpus/subvoc/corpus"
	"github.com/czcorpus/subvoc/db"
	"github.com/czcorpus/subvoc/db/factory"
	"github.com/czcorpus/subvoc/fs"
	"github.com/czcorpus/subvoc/symbol"
	"github.com/czcorpus/subvoc/train"
	"github.com/czcorpus/subvoc/vocab"
)

func sendErrStatus(statusChan chan train.Status, file string, err error) {
	statusChan <- train.Status{
		Datetime: time.Now(),
		File:     file,
		Error:    err,
	}
}

// GetSourceFiles expands the configured corpus sources into
// concrete files - directory sources are replaced by per-file
// entries sharing the directory's format settings.
func GetSourceFiles(conf *cnf.TrainConf) ([]cnf.SourceConf, error) {
	var ans []cnf.SourceConf
	for _, src := range conf.Sources {
		if src.Path == "" {
			log.Warn().Msg("empty path found in the list of corpus sources, skipping")
			continue
		}
		if fs.IsFile(src.Path) {
			ans = append(ans, src)

		} else if fs.IsDir(src.Path) {
			tmp, err := fs.ListFilesInDir(src.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to expand source directory: %w", err)
			}
			for _, path := range tmp {
				item := src
				item.Path = path
				ans = append(ans, item)
			}

		} else {
			return nil, fmt.Errorf("source %s is neither a file nor a directory", src.Path)
		}
	}
	return ans, nil
}

func loadDictionary(
	ctx context.Context,
	conf *cnf.TrainConf,
	sources []cnf.SourceConf,
) (*corpus.Dictionary, error) {
	dict := corpus.NewDictionary()
	for _, src := range sources {
		log.Info().Str("source", src.Path).Str("format", src.Format).Msg("Processing corpus source")
		if src.IsVertical() {
			err := dict.ScanVerticalFile(ctx, corpus.VerticalConf{
				Path:         src.Path,
				Column:       src.VertColumn,
				Encoding:     src.Encoding,
				WordMods:     src.VertWordMods,
				MaxNumErrors: conf.MaxNumErrors,
			})
			if err != nil {
				return nil, err
			}

		} else if err := dict.ScanPlainFile(src.Path); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

func exportResults(corpusID string, t *train.Trainer, writer db.Writer) error {
	symbols := t.Words().Symbols()
	mergeIns, err := writer.PrepareInsert(db.MergeTable, db.MergeCols)
	if err != nil {
		return err
	}
	for _, rec := range t.Records() {
		err := mergeIns.Exec(
			corpusID,
			rec.Rank,
			symbols.Value(rec.Pair.Left),
			symbols.Value(rec.Pair.Right),
			symbols.Value(rec.Result),
			rec.Frequency,
		)
		if err != nil {
			return fmt.Errorf("failed to store merge %d: %w", rec.Rank, err)
		}
	}
	symIns, err := writer.PrepareInsert(db.SymbolTable, db.SymbolCols)
	if err != nil {
		return err
	}
	for i, row := range vocab.RankedSymbols(t.Words()) {
		err := symIns.Exec(corpusID, i, row.Text, row.Frequency)
		if err != nil {
			return fmt.Errorf("failed to store symbol %d: %w", i, err)
		}
	}
	return nil
}

// TrainVocab learns a subword vocabulary from the corpus sources
// specified in the 'conf' argument and stores it via the configured
// output backend.
// The returned status channel is for getting training status
// information including possible errors.
func TrainVocab(ctx context.Context, conf *cnf.TrainConf, appendData bool) (chan train.Status, error) {

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("TrainVocab failed: %w", err)
	}
	writer, err := factory.NewWriter(conf.DB)
	if err != nil {
		return nil, err
	}
	dbExisted := writer.DatabaseExists()
	if !dbExisted && appendData {
		return nil, fmt.Errorf("append flag is set but the output %s does not exist", conf.DB.Name)
	}
	sources, err := GetSourceFiles(conf)
	if err != nil {
		return nil, fmt.Errorf("TrainVocab failed: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("TrainVocab failed - no valid corpus sources found to process")
	}

	statusChan := make(chan train.Status)
	go func() {
		defer writer.Close()
		defer close(statusChan)

		dict, err := loadDictionary(ctx, conf, sources)
		if err != nil {
			sendErrStatus(statusChan, "", err)
			return
		}
		minFreq := conf.MinWordFreq
		if minFreq < 1 {
			minFreq = 1
		}
		items := dict.Items(minFreq)
		log.Info().
			Int("distinctWords", dict.Size()).
			Int("trainedWords", len(items)).
			Msg("built corpus dictionary")

		unit, err := vocab.ParseBaseUnit(conf.BaseUnit)
		if err != nil {
			sendErrStatus(statusChan, "", err)
			return
		}
		words := vocab.NewWordList(symbol.NewTable(), unit)
		for _, item := range items {
			words.Add(item.Text, item.Freq)
		}

		if err := writer.Initialize(appendData); err != nil {
			sendErrStatus(statusChan, "", err)
			return
		}
		if appendData {
			numRemoved, err := writer.RemoveCorpus(conf.Corpus)
			if err != nil {
				writer.Rollback()
				sendErrStatus(statusChan, "", err)
				return
			}
			if numRemoved > 0 {
				log.Info().
					Int("numRemoved", numRemoved).
					Str("corpusId", conf.Corpus).
					Msg("removed previously stored corpus records")
			}
		}

		trainer := train.NewTrainer(ctx, words, conf.MergeLimitValue(), conf.Workers, statusChan)
		if err := trainer.Run(); err != nil {
			writer.Rollback()
			sendErrStatus(statusChan, "", err)
			return
		}
		if err := exportResults(conf.Corpus, trainer, writer); err != nil {
			writer.Rollback()
			sendErrStatus(statusChan, "", err)
			return
		}
		if err := writer.Commit(); err != nil {
			sendErrStatus(statusChan, "", err)
		}
	}()

	return statusChan, nil
}
