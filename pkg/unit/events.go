package unit

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionEventType string

const (
	ExecutionStarted   ExecutionEventType = "execution_started"
	ExecutionCompleted ExecutionEventType = "execution_completed"
	ExecutionFailed    ExecutionEventType = "execution_failed"
)

// ExecutionEvent is emitted around every unit execution so observers
// (CLI verbose mode, tests) can follow the pipeline without hooking
// into unit internals.
type ExecutionEvent struct {
	EventType          string    `json:"event_type"`
	EventDomain        string    `json:"domain"`
	UnitName           string    `json:"unit_name"`
	Input              any       `json:"input,omitempty"`
	Output             any       `json:"output,omitempty"`
	Error              string    `json:"error,omitempty"`
	EventTimestamp     time.Time `json:"timestamp"`
	EventCorrelationID string    `json:"correlation_id"`
	DurationMs         int64     `json:"duration_ms,omitempty"`
}

func (e *ExecutionEvent) Type() string             { return e.EventType }
func (e *ExecutionEvent) Domain() string           { return e.EventDomain }
func (e *ExecutionEvent) Payload() any             { return e }
func (e *ExecutionEvent) Timestamp() time.Time     { return e.EventTimestamp }
func (e *ExecutionEvent) CorrelationID() string    { return e.EventCorrelationID }

type EventPublisher interface {
	Publish(event any) error
}

type ExecutionContext struct {
	Publisher     EventPublisher
	Domain        string
	UnitName      string
	CorrelationID string
	StartTime     time.Time
}

func NewExecutionContext(publisher EventPublisher, domain, unitName string) *ExecutionContext {
	return &ExecutionContext{
		Publisher:     publisher,
		Domain:        domain,
		UnitName:      unitName,
		CorrelationID: uuid.New().String(),
		StartTime:     time.Now(),
	}
}

func (ec *ExecutionContext) PublishStarted(input any) {
	if ec.Publisher == nil {
		return
	}
	_ = ec.Publisher.Publish(&ExecutionEvent{
		EventType:          string(ExecutionStarted),
		EventDomain:        ec.Domain,
		UnitName:           ec.UnitName,
		Input:              input,
		EventTimestamp:     time.Now(),
		EventCorrelationID: ec.CorrelationID,
	})
}

func (ec *ExecutionContext) PublishCompleted(output any) {
	if ec.Publisher == nil {
		return
	}
	_ = ec.Publisher.Publish(&ExecutionEvent{
		EventType:          string(ExecutionCompleted),
		EventDomain:        ec.Domain,
		UnitName:           ec.UnitName,
		Output:             output,
		EventTimestamp:     time.Now(),
		EventCorrelationID: ec.CorrelationID,
		DurationMs:         time.Since(ec.StartTime).Milliseconds(),
	})
}

func (ec *ExecutionContext) PublishFailed(err error) {
	if ec.Publisher == nil {
		return
	}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	_ = ec.Publisher.Publish(&ExecutionEvent{
		EventType:          string(ExecutionFailed),
		EventDomain:        ec.Domain,
		UnitName:           ec.UnitName,
		Error:              errMsg,
		EventTimestamp:     time.Now(),
		EventCorrelationID: ec.CorrelationID,
		DurationMs:         time.Since(ec.StartTime).Milliseconds(),
	})
}

// NoopEventPublisher drops everything. Units accept it so wiring events
// stays optional.
type NoopEventPublisher struct{}

func (n *NoopEventPublisher) Publish(event any) error { return nil }

var _ EventPublisher = (*NoopEventPublisher)(nil)
