// Package events defines the payloads the command line sends when invoking
// the deployed Lambda directly, plus the responses it gets back.
package events

import "github.com/gamedrops/droplist/dispatch"

type CommandLineEventType string

const (
	CommandLineApplyEvent    = CommandLineEventType("Apply")
	CommandLineDispatchEvent = CommandLineEventType("Dispatch")
)

type CommandLineEvent struct {
	DroplistCommand CommandLineEventType `json:"droplistCommand"`
	Apply           *ApplyEvent          `json:"apply,omitempty"`
	Dispatch        *DispatchEvent       `json:"dispatch,omitempty"`
}

// ApplyEvent requests one subscription change, bypassing the public API.
type ApplyEvent struct {
	Email  string `json:"email"`
	Action string `json:"action"`
}

type ApplyResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Details string `json:"details,omitempty"`
}

// DispatchEvent requests a notification run. Kind is "alert" or "recap".
type DispatchEvent struct {
	Kind string `json:"kind"`
}

type DispatchResponse struct {
	Success bool                  `json:"success"`
	Report  *dispatch.BatchReport `json:"report,omitempty"`
	Details string                `json:"details,omitempty"`
}
