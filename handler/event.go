package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/gamedrops/droplist/events"
)

type EventType int

const (
	UnexpectedEvent EventType = iota - 1
	NullEvent
	ApiRequest
	ScheduledEvent
	CommandLineEvent
)

func (event EventType) String() string {
	switch event {
	case UnexpectedEvent:
		return "Unexpected event"
	case NullEvent:
		return "Null event"
	case ApiRequest:
		return "API Request event"
	case ScheduledEvent:
		return "Scheduled event"
	case CommandLineEvent:
		return "Command line event"
	}
	return "Unknown event"
}

type Event struct {
	Type             EventType
	ApiRequest       awsevents.APIGatewayV2HTTPRequest
	ScheduledEvent   awsevents.CloudWatchEvent
	CommandLineEvent events.CommandLineEvent
}

// Inspired by:
// https://www.synvert-tcm.com/blog/handling-multiple-aws-lambda-event-types-with-go/
func (event *Event) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	} else if bytes.Contains(data, []byte(`"rawPath":`)) {
		event.Type = ApiRequest
		return json.Unmarshal(data, &event.ApiRequest)
	} else if bytes.Contains(data, []byte(`"detail-type":`)) {
		event.Type = ScheduledEvent
		return json.Unmarshal(data, &event.ScheduledEvent)
	} else if bytes.Contains(data, []byte(`"droplistCommand":`)) {
		event.Type = CommandLineEvent
		return json.Unmarshal(data, &event.CommandLineEvent)
	}
	event.Type = UnexpectedEvent
	return fmt.Errorf("failed to parse unexpected event: %s", string(data[:]))
}
