//go:build small_tests || all_tests

package cmd

import (
	"log"
	"net/http"
	"strings"
	"testing"

	"github.com/gamedrops/droplist/drops"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"
)

func TestDispatchScheduledRun(t *testing.T) {
	setup := func() (tlc *TestLambdaClient, logs *strings.Builder, logger *log.Logger) {
		tlc = NewTestLambdaClient()
		tlc.InvokeOutput.StatusCode = http.StatusOK
		tlc.InvokeOutput.Payload = []byte(`{
			"success": true,
			"report": {"attempted": 1, "succeeded": 1, "failed": []}
		}`)

		logs = &strings.Builder{}
		logger = log.New(logs, "", 0)
		return
	}

	t.Run("LogsCompletedRun", func(t *testing.T) {
		tlc, logs, logger := setup()

		dispatchScheduledRun(tlc, TestFunctionArn, drops.KindAlert, logger)

		assert.Assert(t, is.Contains(
			logs.String(),
			"alert run complete: attempted 1, succeeded 1, failed 0",
		))
	})

	t.Run("LogsInvocationFailure", func(t *testing.T) {
		tlc, logs, logger := setup()
		tlc.InvokeOutput.StatusCode = http.StatusInternalServerError

		dispatchScheduledRun(tlc, TestFunctionArn, drops.KindRecap, logger)

		assert.Assert(t, is.Contains(logs.String(), "recap run failed: "))
	})

	t.Run("LogsUnsuccessfulRun", func(t *testing.T) {
		tlc, logs, logger := setup()
		tlc.InvokeOutput.Payload = []byte(
			`{"success": false, "details": "store down"}`,
		)

		dispatchScheduledRun(tlc, TestFunctionArn, drops.KindRecap, logger)

		assert.Assert(t, is.Contains(
			logs.String(), "recap run failed: store down",
		))
	})
}
