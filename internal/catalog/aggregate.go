package catalog

import (
	"time"

	"github.com/google/uuid"
)

// SubtreePriceAndCount sums prices over every descendant offer of a category and
// counts them. Offers without a price contribute neither to the sum nor the count.
func (t *Tree) SubtreePriceAndCount(id uuid.UUID) (sum, count int64) {
	node, ok := t.nodes[id]
	if !ok {
		return 0, 0
	}
	for childID := range node.children {
		child, ok := t.nodes[childID]
		if !ok {
			continue
		}
		switch {
		case child.IsOffer():
			if child.Price != nil {
				sum += *child.Price
				count++
			}
		case child.IsCategory():
			s, c := t.SubtreePriceAndCount(childID)
			sum += s
			count += c
		}
	}
	return sum, count
}

// SubtreeLastUpdate is the latest Date among the node and its whole subtree.
func (t *Tree) SubtreeLastUpdate(id uuid.UUID) time.Time {
	node, ok := t.nodes[id]
	if !ok {
		return time.Time{}
	}
	last := node.Date
	for childID := range node.children {
		child, ok := t.nodes[childID]
		if !ok {
			continue
		}
		var date time.Time
		switch {
		case child.IsOffer():
			date = child.Date
		case child.IsCategory():
			date = t.SubtreeLastUpdate(childID)
		}
		if date.After(last) {
			last = date
		}
	}
	return last
}

// AveragePrice floors sum/count, or returns nil when there is nothing to average.
func AveragePrice(sum, count int64) *int64 {
	if count == 0 {
		return nil
	}
	avg := sum / count
	return &avg
}
