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

// Package corpus loads raw text into a word frequency dictionary
// which is the input of the vocabulary trainer.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Item is one distinct word form along with its corpus
// occurrence count.
type Item struct {
	Text string
	Freq int
}

// Dictionary aggregates occurrence counts of distinct word forms.
// Insertion order of first occurrences is preserved so that
// downstream processing stays reproducible on identical input.
type Dictionary struct {
	counts map[string]int
	order  []string
}

// Add increases the count of a word form by one.
func (d *Dictionary) Add(word string) {
	d.AddN(word, 1)
}

// AddN increases the count of a word form by n.
func (d *Dictionary) AddN(word string, n int) {
	if _, ok := d.counts[word]; !ok {
		d.order = append(d.order, word)
	}
	d.counts[word] += n
}

func (d *Dictionary) Size() int {
	return len(d.counts)
}

// Items returns all the word forms with count >= minFreq in
// first-seen order. Empty word forms never make it into the
// dictionary, so every returned item has a non-empty text and
// a positive count.
func (d *Dictionary) Items(minFreq int) []Item {
	ans := make([]Item, 0, len(d.order))
	for _, w := range d.order {
		if d.counts[w] >= minFreq {
			ans = append(ans, Item{Text: w, Freq: d.counts[w]})
		}
	}
	return ans
}

func NewDictionary() *Dictionary {
	return &Dictionary{
		counts: make(map[string]int),
	}
}

// ScanText feeds a dictionary from a piece of raw text. A word is
// a maximal run of letters; words are lowercased before counting.
func (d *Dictionary) ScanText(text string) {
	var word strings.Builder
	for _, ch := range text {
		if unicode.IsLetter(ch) {
			word.WriteRune(unicode.ToLower(ch))

		} else if word.Len() > 0 {
			d.Add(word.String())
			word.Reset()
		}
	}
	if word.Len() > 0 {
		d.Add(word.String())
	}
}

// ScanPlainFile feeds a dictionary from a plain text file,
// line by line (see ScanText for the word extraction rule).
func (d *Dictionary) ScanPlainFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to scan plain text file: %w", err)
	}
	defer f.Close()
	rdr := bufio.NewScanner(f)
	for rdr.Scan() {
		d.ScanText(rdr.Text())
	}
	if err := rdr.Err(); err != nil {
		return fmt.Errorf("failed to scan plain text file: %w", err)
	}
	return nil
}
