package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecordsErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("delete", "stages"))

	var c Collector
	c.RecordOperation("delete", "stages", 3*time.Millisecond, true)
	c.RecordOperation("delete", "stages", time.Millisecond, false)

	assert.Equal(t, before+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("delete", "stages")))
}

func TestAddSeededRows(t *testing.T) {
	before := testutil.ToFloat64(SeededRows.WithLabelValues("students"))
	AddSeededRows("students", 100)
	assert.Equal(t, before+100, testutil.ToFloat64(SeededRows.WithLabelValues("students")))
}
