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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/czcorpus/subvoc/cnf"
	"github.com/czcorpus/subvoc/library"
	"github.com/czcorpus/subvoc/validation"
)

const version = "1.0.0"

func dumpNewConf() {
	mergeLimit := 10000
	conf := cnf.TrainConf{}
	conf.Corpus = "syn_v4"
	conf.Sources = []cnf.SourceConf{
		{Path: "/path/to/vertical/file", Format: "vertical", VertColumn: 0, Encoding: "UTF-8"},
	}
	conf.BaseUnit = "char"
	conf.MergeLimit = &mergeLimit
	conf.MinWordFreq = 1
	conf.Workers = 4
	conf.DB.Type = "sqlite"
	conf.DB.Name = "/path/to/output/database.db"
	b, err := sonic.MarshalIndent(conf, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to dump a new config")
	}
	fmt.Println(string(b))
}

func trainVocab(confPath string, appendData bool) {
	conf, err := cnf.LoadConf(confPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t0 := time.Now()
	statusChan, err := library.TrainVocab(ctx, conf, appendData)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run")
		return
	}
	var lastErr error
	for status := range statusChan {
		if status.Error != nil {
			lastErr = status.Error
			log.Error().Err(status.Error).Msg("failed to process")

		} else {
			log.Info().
				Int("numMerges", status.NumMerges).
				Int("numPairs", status.NumPairs).
				Msg("training progress")
		}
	}
	if lastErr != nil {
		log.Fatal().Err(lastErr).Msg("training failed")
		return
	}
	log.Info().Dur("procTime", time.Since(t0)).Msg("training finished")
}

func validateSources(confPath string) {
	conf, err := cnf.LoadConf(confPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run")
		return
	}
	sources, err := library.GetSourceFiles(conf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	numErrors := 0
	for status := range validation.ValidateSources(ctx, conf, sources) {
		if status.Error != nil {
			numErrors++
			log.Error().Err(status.Error).Str("file", status.File).Msg("validation error")

		} else {
			log.Info().
				Str("file", status.File).
				Int("processedLines", status.ProcessedLines).
				Int("processedTokens", status.ProcessedTokens).
				Msg("validation progress")
		}
	}
	if numErrors > 0 {
		log.Fatal().Int("numErrors", numErrors).Msg("validation failed")
		return
	}
	log.Info().Msg("validation finished without errors")
}

func main() {
	flag.Usage = func() {
		fmt.Println("\n+-------------------------------------------------------------+")
		fmt.Println("|  Subvoc - a program for learning subword vocabularies from  |")
		fmt.Println("|        corpus data via iterative byte-pair encoding         |")
		fmt.Printf("|                        version %s                         |\n", version)
		fmt.Println("|          (c) Institute of the Czech National Corpus         |")
		fmt.Println("|         (c) Tomas Machalek tomas.machalek@ff.cuni.cz        |")
		fmt.Println("+-------------------------------------------------------------+")
		fmt.Println("\nUsage:")
		fmt.Println("subvoc train config.json\n\t(learn a vocabulary configured in config.json, write to a new storage)")
		fmt.Println("subvoc append config.json\n\t(learn a vocabulary configured in config.json, add data to an existing storage)")
		fmt.Println("subvoc validate config.json\n\t(dry-run the parser over the configured vertical sources)")
		fmt.Println("subvoc template\n\t(create a half empty sample config and write it to stdout)")
		fmt.Println("\n(config file should be named after a respective corpus name, e.g. syn_v4.json)")

		fmt.Println("\nOptions:")
		flag.PrintDefaults()
	}

	trainCommand := flag.NewFlagSet("train", flag.ExitOnError)
	trainCommand.Usage = func() {
		fmt.Println("Usage: subvoc train conf.json")
	}
	appendCommand := flag.NewFlagSet("append", flag.ExitOnError)
	appendCommand.Usage = func() {
		fmt.Println("Usage: subvoc append conf.json")
	}
	validateCommand := flag.NewFlagSet("validate", flag.ExitOnError)
	validateCommand.Usage = func() {
		fmt.Println("Usage: subvoc validate conf.json")
	}
	templateCommand := flag.NewFlagSet("template", flag.ExitOnError)
	templateCommand.Usage = func() {
		fmt.Println("Usage: subvoc template [> conf.json]")
	}
	flag.Parse()

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "train":
		trainCommand.Parse(os.Args[2:])
		trainVocab(trainCommand.Arg(0), false)
	case "append":
		appendCommand.Parse(os.Args[2:])
		trainVocab(appendCommand.Arg(0), true)
	case "validate":
		validateCommand.Parse(os.Args[2:])
		validateSources(validateCommand.Arg(0))
	case "template":
		templateCommand.Parse(os.Args[2:])
		dumpNewConf()
	default:
		log.Fatal().Msgf("Unknown command '%s'", os.Args[1])
	}
}
