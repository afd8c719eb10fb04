package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordToolExecution(t *testing.T) {
	before := testutil.ToFloat64(ToolExecutions.WithLabelValues("metrics_test_tool", StatusSuccess))
	RecordToolExecution("metrics_test_tool", StatusSuccess, 10*time.Millisecond)
	after := testutil.ToFloat64(ToolExecutions.WithLabelValues("metrics_test_tool", StatusSuccess))
	assert.Equal(t, before+1, after)
}

func TestRecordModelInvocation(t *testing.T) {
	RecordModelInvocation("metrics_test_agent", errors.New("down"), time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(ModelInvocations.WithLabelValues("metrics_test_agent", StatusError)))
}

func TestRecordRunAndChain(t *testing.T) {
	RecordRun("metrics_test_run", "done", 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(RunOutcomes.WithLabelValues("metrics_test_run", "done")))

	RecordChain("metrics_test_chain", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(ChainExecutions.WithLabelValues("metrics_test_chain", StatusSuccess)))
}

func TestHandler(t *testing.T) {
	RecordBatch(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "smartagents_executor_batch_size"))
}
