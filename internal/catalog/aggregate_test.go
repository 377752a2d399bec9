package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_NestedSubtree(t *testing.T) {
	tree := NewTree()
	root, phones, tvs := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, tree.Upsert(category(root, "Товары", nil), at(0)))
	require.NoError(t, tree.Upsert(category(phones, "Смартфоны", ref(root)), at(1)))
	require.NoError(t, tree.Upsert(category(tvs, "Телевизоры", ref(root)), at(2)))
	require.NoError(t, tree.Upsert(offer(uuid.New(), "jPhone", ref(phones), 79999), at(3)))
	require.NoError(t, tree.Upsert(offer(uuid.New(), "Xomiа", ref(phones), 59999), at(3)))
	require.NoError(t, tree.Upsert(offer(uuid.New(), "Samson", ref(tvs), 32999), at(5)))

	sum, count := tree.SubtreePriceAndCount(root)
	assert.Equal(t, int64(79999+59999+32999), sum)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, int64(57665), *AveragePrice(sum, count))

	assert.Equal(t, at(5), tree.SubtreeLastUpdate(root))
	assert.Equal(t, at(3), tree.SubtreeLastUpdate(phones))
}

func TestAggregate_EmptyCategory(t *testing.T) {
	tree := NewTree()
	c := uuid.New()
	require.NoError(t, tree.Upsert(category(c, "Пусто", nil), at(4)))

	sum, count := tree.SubtreePriceAndCount(c)
	assert.Zero(t, sum)
	assert.Zero(t, count)
	assert.Nil(t, AveragePrice(sum, count))
	assert.Equal(t, at(4), tree.SubtreeLastUpdate(c))
}

func TestAggregate_NestedCategoryDateCounts(t *testing.T) {
	tree := NewTree()
	root, sub := uuid.New(), uuid.New()
	require.NoError(t, tree.Upsert(category(root, "Root", nil), at(0)))
	require.NoError(t, tree.Upsert(category(sub, "Sub", ref(root)), at(7)))

	assert.Equal(t, at(7), tree.SubtreeLastUpdate(root))
}

func TestAggregate_FloorDivision(t *testing.T) {
	assert.Equal(t, int64(1), *AveragePrice(3, 2))
	assert.Equal(t, int64(0), *AveragePrice(2, 3))
}

func TestAggregate_UnknownID(t *testing.T) {
	tree := NewTree()
	sum, count := tree.SubtreePriceAndCount(uuid.New())
	assert.Zero(t, sum+count)
	assert.Equal(t, time.Time{}, tree.SubtreeLastUpdate(uuid.New()))
}
