package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixedIntSource replays a fixed sequence so composed queries are exact.
type fixedIntSource struct {
	values []int
	index  int
}

func (source *fixedIntSource) Intn(n int) int {
	if len(source.values) == 0 {
		return 0
	}
	value := source.values[source.index%len(source.values)] % n
	source.index++
	return value
}

func TestComposeInitialQuery(t *testing.T) {
	builder := NewQueryBuilder(&fixedIntSource{values: []int{0, 1}})

	query := builder.Compose("mathematics topology", false, nil)

	assert.Equal(t, "latest mathematics topology academic mathematics breakthrough discovery", query)
}

func TestComposeInitialQueryVariesWithSource(t *testing.T) {
	builder := NewQueryBuilder(&fixedIntSource{values: []int{3, 4}})

	query := builder.Compose("mathematics algebra", false, []string{"https://www.nature.com/a"})

	assert.Equal(t, "breaking mathematics algebra institute mathematics breakthrough discovery", query)
	assert.NotContains(t, query, "-site:", "exclusions only shape find-more queries")
}

func TestComposeFindMoreQuery(t *testing.T) {
	builder := NewQueryBuilder(&fixedIntSource{values: []int{2, 3}})
	builder.now = func() time.Time {
		return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	}

	query := builder.Compose("mathematics topology", true, nil)

	assert.Equal(t, "mathematics topology university new 2024 2025", query)
}

func TestComposeFindMoreAppendsDistinctHostnames(t *testing.T) {
	builder := NewQueryBuilder(&fixedIntSource{values: []int{0, 0}})
	builder.now = func() time.Time {
		return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	}

	excludeURLs := []string{
		"https://www.nature.com/articles/one",
		"https://www.nature.com/articles/two",
		"https://ARXIV.org/abs/2501.00001",
		"://not-a-url",
	}

	query := builder.Compose("mathematics primes", true, excludeURLs)

	assert.Equal(t, "mathematics primes research latest 2024 2025 -site:www.nature.com -site:arxiv.org", query)
}

func TestDistinctHostnames(t *testing.T) {
	hostnames := distinctHostnames([]string{
		"https://www.ams.org/journals/a",
		"https://www.ams.org/journals/b",
		"https://springer.com/x",
		"",
		"://broken",
	})

	assert.Equal(t, []string{"www.ams.org", "springer.com"}, hostnames)
}
