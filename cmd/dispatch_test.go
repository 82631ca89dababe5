//go:build small_tests || all_tests

package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gamedrops/droplist/events"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"
)

func TestDispatch(t *testing.T) {
	setup := func() (
		f *CommandTestFixture,
		cfc *TestCloudFormationClient,
		tlc *TestLambdaClient,
	) {
		cfc = NewTestCloudFormationClient()
		tlc = NewTestLambdaClient()
		tlc.InvokeOutput.StatusCode = http.StatusOK
		tlc.InvokeOutput.Payload = []byte(`{
			"success": true,
			"report": {
				"attempted": 3,
				"succeeded": 2,
				"failed": [{"recipient": "foo@bar.com", "reason": "suppressed"}]
			}
		}`)

		f = NewCommandTestFixture(newDispatchCmd(
			func() LambdaClient { return tlc },
			func() CloudFormationClient { return cfc },
		))
		f.Cmd.SetArgs([]string{"-s", TestStackName, "--kind", "recap"})
		return
	}

	t.Run("Succeeds", func(t *testing.T) {
		f, _, tlc := setup()

		f.ExecuteAndAssertStdoutContains(
			t, "recap run complete: attempted 3, succeeded 2, failed 1\n",
		)

		assert.Assert(t, is.Contains(
			f.Stdout.String(), "foo@bar.com: suppressed",
		))
		event := &events.CommandLineEvent{}
		assert.NilError(t, json.Unmarshal(tlc.InvokeInput.Payload, event))
		assert.Equal(t, events.CommandLineDispatchEvent, event.DroplistCommand)
		assert.Equal(t, "recap", event.Dispatch.Kind)
	})

	t.Run("RejectsUnknownKind", func(t *testing.T) {
		f, _, _ := setup()
		f.Cmd.SetArgs([]string{"-s", TestStackName, "--kind", "blast"})

		f.ExecuteAndAssertErrorContains(t, "invalid run kind: blast")
	})

	t.Run("FailsIfStatusCodeIsNotHttp200", func(t *testing.T) {
		f, _, tlc := setup()
		tlc.InvokeOutput.StatusCode = http.StatusBadRequest

		f.ExecuteAndAssertErrorContains(
			t, "received non-200 response: "+
				http.StatusText(http.StatusBadRequest),
		)
	})

	t.Run("FailsIfLambdaReturnedError", func(t *testing.T) {
		f, _, tlc := setup()
		tlc.InvokeOutput.FunctionError = aws.String("Lambda error")
		tlc.InvokeOutput.Payload = []byte("something went wrong")

		f.ExecuteAndAssertErrorContains(
			t, "error executing Lambda function: "+
				"Lambda error: something went wrong",
		)
	})

	t.Run("FailsIfCannotUnmarshalPayload", func(t *testing.T) {
		f, _, tlc := setup()
		tlc.InvokeOutput.Payload = []byte("bogus, invalid payload")

		f.ExecuteAndAssertErrorContains(
			t, "failed to unmarshal Lambda response payload: ",
		)
	})

	t.Run("FailsIfRunFailed", func(t *testing.T) {
		f, _, tlc := setup()
		tlc.InvokeOutput.Payload = []byte(
			`{"success": false, "details": "store down"}`,
		)

		f.ExecuteAndAssertErrorContains(t, "recap run failed: store down")
	})
}
