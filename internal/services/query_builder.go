package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// IntSource yields bounded random ints. *math/rand.Rand satisfies it;
// tests substitute a fixed source to assert exact composed queries.
type IntSource interface {
	Intn(n int) int
}

var (
	freshnessQualifiers = []string{"latest", "recent", "new", "breaking", "current"}
	sourceQualifiers    = []string{"research", "academic", "journal", "university", "institute"}
)

// QueryBuilder composes provider query strings. Qualifiers are picked at
// random on purpose: repeated calls for the same topic must not collapse
// onto an identical query, which would starve pagination of new inventory.
type QueryBuilder struct {
	random IntSource
	now    func() time.Time
}

func NewQueryBuilder(random IntSource) *QueryBuilder {
	return &QueryBuilder{
		random: random,
		now:    time.Now,
	}
}

// Compose builds one query string and never fails. In find-more mode it
// appends a negative-site clause per distinct hostname already shown and
// tags the current and previous year; in initial mode it biases toward
// breakthrough and discovery framing.
func (builder *QueryBuilder) Compose(subject string, findMore bool, excludeURLs []string) string {
	freshness := freshnessQualifiers[builder.random.Intn(len(freshnessQualifiers))]
	source := sourceQualifiers[builder.random.Intn(len(sourceQualifiers))]

	if !findMore {
		return fmt.Sprintf("%s %s %s mathematics breakthrough discovery", freshness, subject, source)
	}

	year := builder.now().Year()
	query := fmt.Sprintf("%s %s %s %d %d", subject, source, freshness, year-1, year)

	for _, hostname := range distinctHostnames(excludeURLs) {
		query += " -site:" + hostname
	}

	return query
}

func distinctHostnames(rawURLs []string) []string {
	seen := make(map[string]bool, len(rawURLs))
	hostnames := make([]string, 0, len(rawURLs))

	for _, raw := range rawURLs {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Hostname() == "" {
			continue
		}

		hostname := strings.ToLower(parsed.Hostname())
		if !seen[hostname] {
			seen[hostname] = true
			hostnames = append(hostnames, hostname)
		}
	}

	return hostnames
}
