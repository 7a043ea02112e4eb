package healthcheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testChecker struct {
	items []CheckResult
}

func (c *testChecker) ListChecks(context.Context) []CheckResult {
	return c.items
}

func TestRunWorstStatusWins(t *testing.T) {
	t.Parallel()

	report := Run(context.Background(), []Checker{
		&testChecker{items: []CheckResult{{ID: "store.postgres", Status: StatusOK}}},
		nil,
		&testChecker{items: []CheckResult{{ID: "cache.redis", Status: StatusWarn}}},
		&testChecker{items: []CheckResult{{ID: "storage.local", Status: StatusOK}}},
	})

	assert.Equal(t, StatusWarn, report.Status)
	assert.Len(t, report.Checks, 3)
	assert.Equal(t, "cache.redis", report.Checks[1].ID)
}

func TestRunErrorOutranksWarn(t *testing.T) {
	t.Parallel()

	report := Run(context.Background(), []Checker{
		&testChecker{items: []CheckResult{{Status: StatusWarn}, {Status: StatusError}, {Status: StatusUnknown}}},
	})
	assert.Equal(t, StatusError, report.Status)
}

func TestRunEmpty(t *testing.T) {
	t.Parallel()

	report := Run(context.Background(), nil)
	assert.Equal(t, StatusOK, report.Status)
	assert.NotNil(t, report.Checks)
}
