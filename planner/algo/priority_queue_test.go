package algo_test

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urbanlab/siting/planner/algo"
)

func TestPriorityQueueOrder(t *testing.T) {
	// incremental heap.Push, no bulk Init
	pq := make(algo.PriorityQueue, 0)
	heap.Push(&pq, &algo.Item{Value: 7, Priority: 12.5})
	heap.Push(&pq, &algo.Item{Value: 3, Priority: 3.25})
	heap.Push(&pq, &algo.Item{Value: 9, Priority: 0.5})
	heap.Push(&pq, &algo.Item{Value: 1, Priority: 9.75})
	heap.Push(&pq, &algo.Item{Value: 5, Priority: 3.25})

	wantValues := map[float64][]int{3.25: {3, 5}}
	prev := -1.0
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*algo.Item)
		assert.GreaterOrEqual(t, item.Priority, prev)
		assert.Equal(t, -1, item.Index)
		if vs, ok := wantValues[item.Priority]; ok {
			assert.Contains(t, vs, item.Value)
		}
		prev = item.Priority
	}
}

func TestPriorityQueueBulkInit(t *testing.T) {
	// plain appends first, then one Init to establish the invariant
	pq := make(algo.PriorityQueue, 0)
	pq.Push(&algo.Item{Value: 11, Priority: 40})
	pq.Push(&algo.Item{Value: 12, Priority: 10})
	pq.Push(&algo.Item{Value: 13, Priority: 30})
	heap.Init(&pq)

	item := heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 12, item.Value)
	item = heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 13, item.Value)
	assert.Equal(t, 1, pq.Len())
}

func TestPriorityQueueReprioritize(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	items := map[int]*algo.Item{}
	for v, p := range map[int]float64{1: 6, 2: 2, 3: 8} {
		item := &algo.Item{Value: v, Priority: p}
		items[v] = item
		heap.Push(&pq, item)
	}

	// a relaxed tentative cost moves the node forward
	items[3].Priority = 1
	heap.Fix(&pq, items[3].Index)
	// and a worse one pushes it back
	items[2].Priority = 9
	heap.Fix(&pq, items[2].Index)

	assert.Equal(t, 3, heap.Pop(&pq).(*algo.Item).Value)
	assert.Equal(t, 1, heap.Pop(&pq).(*algo.Item).Value)
	assert.Equal(t, 2, heap.Pop(&pq).(*algo.Item).Value)
	assert.Equal(t, 0, pq.Len())
}
