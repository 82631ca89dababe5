//go:build small_tests || all_tests

package handler

import (
	"context"

	"github.com/gamedrops/droplist/dispatch"
	"github.com/gamedrops/droplist/drops"
	"github.com/gamedrops/droplist/ops"
	"github.com/gamedrops/droplist/registry"
)

type subscriptionAgentDouble struct {
	Email  string
	Action registry.Action
	Result ops.OperationResult
	Error  error
}

func (a *subscriptionAgentDouble) Apply(
	_ context.Context, address string, action registry.Action,
) (ops.OperationResult, error) {
	a.Email = address
	a.Action = action

	if a.Error != nil {
		return ops.Invalid, a.Error
	}
	return a.Result, nil
}

type notificationAgentDouble struct {
	Kind   drops.Kind
	Calls  int
	Report *dispatch.BatchReport
	Error  error
}

func (n *notificationAgentDouble) Notify(
	_ context.Context, kind drops.Kind,
) (*dispatch.BatchReport, error) {
	n.Kind = kind
	n.Calls++

	if n.Error != nil {
		return nil, n.Error
	}
	return n.Report, nil
}
