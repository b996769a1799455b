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

// Package validation performs a dry run over configured vertical
// sources. It parses the files the same way the trainer's corpus
// loader does but stores nothing, so problems in large verticals
// can be found before a long training run is started.
package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tomachalek/vertigo/v5"

	"github.com/czcorpus/subvoc/cnf"
)

var (
	ErrorTooManyParsingErrors = errors.New("too many parsing errors")
)

// Status stores some basic information about vertical file processing
type Status struct {
	Datetime        time.Time
	File            string
	ProcessedTokens int
	ProcessedLines  int
	Error           error
}

// VertValidator walks through a vertical file without storing
// anything. Parsed values are received passively by implementing
// vertigo.LineProcessor.
type VertValidator struct {
	ctx          context.Context
	file         string
	statusChan   chan<- Status
	tokenCounter int
	lineCounter  int
	errorCounter int
	maxNumErrors int
}

// handleProcError reports a provided error err by sending it via
// statusChan and also evaluates the total number of errors. In case
// it is too high it returns ErrorTooManyParsingErrors which stops
// the parser.
func (v *VertValidator) handleProcError(lineNum int, err error) error {
	v.statusChan <- Status{
		Datetime:        time.Now(),
		File:            v.file,
		ProcessedTokens: v.tokenCounter,
		ProcessedLines:  lineNum,
		Error:           err,
	}
	log.Error().Err(err).Int("lineNumber", lineNum).Str("file", v.file).Msg("parsing error")
	v.errorCounter++
	if v.errorCounter > v.maxNumErrors {
		return ErrorTooManyParsingErrors
	}
	return nil
}

func (v *VertValidator) reportProgress(line int) {
	if line%10000 == 0 {
		v.statusChan <- Status{
			Datetime:        time.Now(),
			File:            v.file,
			ProcessedTokens: v.tokenCounter,
			ProcessedLines:  line,
		}
	}
}

// ProcToken is a part of vertigo.LineProcessor implementation.
// It is called by Vertigo parser when a token line is encountered.
func (v *VertValidator) ProcToken(tk *vertigo.Token, line int, err error) error {
	select {
	case <-v.ctx.Done():
		return fmt.Errorf("received stop signal: %s", v.ctx.Err())
	default:
	}
	if err != nil { // error from the Vertigo parser
		return v.handleProcError(line, err)
	}
	v.tokenCounter++
	v.lineCounter = line
	v.reportProgress(line)
	return nil
}

// ProcStruct is a part of vertigo.LineProcessor implementation.
// It is called by Vertigo parser when an opening structure tag
// is encountered.
func (v *VertValidator) ProcStruct(st *vertigo.Structure, line int, err error) error {
	if err != nil {
		return v.handleProcError(line, err)
	}
	v.lineCounter = line
	v.reportProgress(line)
	return nil
}

// ProcStructClose is a part of vertigo.LineProcessor implementation.
// It is called by Vertigo parser when a closing structure tag is
// encountered.
func (v *VertValidator) ProcStructClose(st *vertigo.StructureClose, line int, err error) error {
	if err != nil {
		return v.handleProcError(line, err)
	}
	v.lineCounter = line
	v.reportProgress(line)
	return nil
}

func validateFile(ctx context.Context, src cnf.SourceConf, maxNumErrors int, statusChan chan<- Status) error {
	parserConf := &vertigo.ParserConf{
		InputFilePath:         src.Path,
		StructAttrAccumulator: "nil",
		Encoding:              src.Encoding,
	}
	v := &VertValidator{
		ctx:          ctx,
		file:         src.Path,
		statusChan:   statusChan,
		maxNumErrors: maxNumErrors,
	}
	log.Info().Str("file", src.Path).Msg("Starting to validate vertical file")
	if err := vertigo.ParseVerticalFile(parserConf, v); err != nil {
		return fmt.Errorf("failed to parse vertical file: %w", err)
	}
	statusChan <- Status{
		Datetime:        time.Now(),
		File:            src.Path,
		ProcessedTokens: v.tokenCounter,
		ProcessedLines:  v.lineCounter,
	}
	return nil
}

// ValidateSources dry-runs the parser over all vertical sources of
// a training configuration. Plain text sources are skipped - there
// is no structure to validate in them. The returned status channel
// reports progress and parsing errors per file.
func ValidateSources(ctx context.Context, conf *cnf.TrainConf, sources []cnf.SourceConf) chan Status {
	statusChan := make(chan Status)
	go func() {
		defer close(statusChan)
		for _, src := range sources {
			if !src.IsVertical() {
				log.Info().Str("file", src.Path).Msg("skipping plain text source")
				continue
			}
			if err := validateFile(ctx, src, conf.MaxNumErrors, statusChan); err != nil {
				statusChan <- Status{
					Datetime: time.Now(),
					File:     src.Path,
					Error:    err,
				}
				return
			}
		}
	}()
	return statusChan
}
