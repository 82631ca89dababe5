package ops

import "github.com/gamedrops/droplist/types"

// ErrExternal indicates that a request to an upstream service failed.
//
// handler.Handler checks for this error in order to return an HTTP 502 when
// applicable.
const ErrExternal = types.SentinelError("external error")

// ErrExhausted indicates that every attempt to update the subscriber
// document lost the version check to a concurrent writer.
const ErrExhausted = types.SentinelError("update attempts exhausted")
