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

package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tomachalek/vertigo/v5"

	"github.com/czcorpus/subvoc/corpus/modders"
)

var (
	ErrorTooManyParsingErrors = errors.New("too many parsing errors")
)

// VerticalConf configures scanning of a corpus vertical file.
type VerticalConf struct {
	Path string

	// Column is a zero-based positional attribute index
	// to take word forms from (0 = the word itself).
	Column int

	Encoding string

	// WordMods lists normalization functions applied to each
	// extracted word form (see the modders package). When empty,
	// trimming plus lowercasing is used.
	WordMods []string

	// MaxNumErrors if reached then the scan stops
	MaxNumErrors int
}

// vertScanner feeds a word dictionary from a corpus vertical file.
// Token values are received passively by implementing
// vertigo.LineProcessor.
type vertScanner struct {
	ctx          context.Context
	dict         *Dictionary
	column       int
	mods         *modders.ModderChain
	errorCounter int
	maxNumErrors int
}

// handleProcError counts a parsing error and, in case the total
// number exceeds the configured limit, returns
// ErrorTooManyParsingErrors which stops the parser.
func (vs *vertScanner) handleProcError(lineNum int, err error) error {
	log.Error().Err(err).Int("lineNumber", lineNum).Msg("parsing error")
	vs.errorCounter++
	if vs.errorCounter > vs.maxNumErrors {
		return ErrorTooManyParsingErrors
	}
	return nil
}

// ProcToken is a part of vertigo.LineProcessor implementation.
// It is called by Vertigo parser when a token line is encountered.
func (vs *vertScanner) ProcToken(tk *vertigo.Token, line int, err error) error {
	select {
	case <-vs.ctx.Done():
		return fmt.Errorf("received stop signal: %s", vs.ctx.Err())
	default:
	}
	if err != nil { // error from the Vertigo parser
		return vs.handleProcError(line, err)
	}
	var value string
	if vs.column == 0 {
		value = tk.Word

	} else if vs.column-1 < len(tk.Attrs) {
		value = tk.Attrs[vs.column-1]

	} else {
		return vs.handleProcError(
			line, fmt.Errorf("token has no positional attribute %d", vs.column))
	}
	value = vs.mods.Mod(value)
	if value != "" {
		vs.dict.Add(value)
	}
	return nil
}

// ProcStruct is a part of vertigo.LineProcessor implementation.
// Structures carry no word forms, so only parser errors are handled.
func (vs *vertScanner) ProcStruct(st *vertigo.Structure, line int, err error) error {
	if err != nil {
		return vs.handleProcError(line, err)
	}
	return nil
}

// ProcStructClose is a part of vertigo.LineProcessor implementation.
func (vs *vertScanner) ProcStructClose(st *vertigo.StructureClose, line int, err error) error {
	if err != nil {
		return vs.handleProcError(line, err)
	}
	return nil
}

// ScanVerticalFile feeds a dictionary from a corpus vertical file,
// taking word forms from the configured positional column.
func (d *Dictionary) ScanVerticalFile(ctx context.Context, conf VerticalConf) error {
	parserConf := &vertigo.ParserConf{
		InputFilePath:         conf.Path,
		StructAttrAccumulator: "nil",
		Encoding:              conf.Encoding,
	}
	modNames := conf.WordMods
	if len(modNames) == 0 {
		modNames = []string{"trim", "toLower"}
	}
	mods, err := modders.NewChainFromNames(modNames)
	if err != nil {
		return fmt.Errorf("failed to parse vertical file: %w", err)
	}
	proc := &vertScanner{
		ctx:          ctx,
		dict:         d,
		column:       conf.Column,
		mods:         mods,
		maxNumErrors: conf.MaxNumErrors,
	}
	if err := vertigo.ParseVerticalFile(parserConf, proc); err != nil {
		return fmt.Errorf("failed to parse vertical file: %w", err)
	}
	return nil
}
