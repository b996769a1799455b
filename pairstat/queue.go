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

package pairstat

// candidate is a snapshot of a pair's count at the moment it was
// pushed into the queue. A candidate whose count no longer matches
// the table is stale and gets discarded lazily.
type candidate struct {
	pair  Pair
	count int
	seq   int
}

// candidateQueue is a max-heap ordering candidates by count
// (higher first) and, for equal counts, by discovery sequence
// number (earlier first). Implements heap.Interface.
type candidateQueue struct {
	items []candidate
}

func (q *candidateQueue) Len() int {
	return len(q.items)
}

func (q *candidateQueue) Less(i, j int) bool {
	if q.items[i].count != q.items[j].count {
		return q.items[i].count > q.items[j].count
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *candidateQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *candidateQueue) Push(x any) {
	q.items = append(q.items, x.(candidate))
}

func (q *candidateQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}
