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

package symbol

// Symbol is a stable integer handle referring to an interned
// string stored in a Table. Comparing two symbols for equality
// is equivalent to comparing their string contents but avoids
// any string operation.
type Symbol int

// Table is basically a bidirectional map for mapping between
// symbol strings and ints and ints and symbol strings. It is
// used both to reduce memory usage when storing decomposed
// words and to make pair comparisons cheap. Once interned,
// the string content of a symbol never changes.
type Table struct {
	values []string
	index  map[string]Symbol
}

// Intern adds a string to the table and returns its numeric
// representation. If the string is already present, the existing
// handle is returned.
func (t *Table) Intern(value string) Symbol {
	v, ok := t.index[value]
	if !ok {
		v = Symbol(len(t.values))
		t.values = append(t.values, value)
		t.index[value] = v
	}
	return v
}

// Concat interns the concatenation of the contents of two
// existing symbols and returns the handle of the result.
func (t *Table) Concat(s1, s2 Symbol) Symbol {
	return t.Intern(t.Value(s1) + t.Value(s2))
}

// Value returns the string a symbol refers to. For an unknown
// handle, an empty string is returned.
func (t *Table) Value(s Symbol) string {
	if s < 0 || int(s) >= len(t.values) {
		return ""
	}
	return t.values[s]
}

func (t *Table) Size() int {
	return len(t.values)
}

func NewTable() *Table {
	return &Table{
		values: make([]string, 0, 512),
		index:  make(map[string]Symbol),
	}
}
