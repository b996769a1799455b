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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternReturnsStableHandles(t *testing.T) {
	tbl := NewTable()
	s1 := tbl.Intern("foo")
	s2 := tbl.Intern("bar")
	s3 := tbl.Intern("foo")
	assert.Equal(t, s1, s3)
	assert.NotEqual(t, s1, s2)
	assert.Equal(t, 2, tbl.Size())
}

func TestValue(t *testing.T) {
	tbl := NewTable()
	s := tbl.Intern("low")
	assert.Equal(t, "low", tbl.Value(s))
}

func TestValueUnknownHandle(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, "", tbl.Value(Symbol(0)))
	assert.Equal(t, "", tbl.Value(Symbol(-1)))
}

func TestConcat(t *testing.T) {
	tbl := NewTable()
	s1 := tbl.Intern("e")
	s2 := tbl.Intern("s")
	merged := tbl.Concat(s1, s2)
	assert.Equal(t, "es", tbl.Value(merged))
	assert.NotEqual(t, s1, merged)
	assert.NotEqual(t, s2, merged)
}

func TestConcatDeduplicates(t *testing.T) {
	tbl := NewTable()
	es := tbl.Intern("es")
	s1 := tbl.Intern("e")
	s2 := tbl.Intern("s")
	merged := tbl.Concat(s1, s2)
	assert.Equal(t, es, merged)
	assert.Equal(t, 3, tbl.Size())
}
