package service

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RequestState int

const (
	RequestStateReceived RequestState = iota
	RequestStateResolved
	RequestStateExecuting
	RequestStateCompleted
	RequestStateFailed
)

func (s RequestState) String() string {
	switch s {
	case RequestStateReceived:
		return "received"
	case RequestStateResolved:
		return "resolved"
	case RequestStateExecuting:
		return "executing"
	case RequestStateCompleted:
		return "completed"
	case RequestStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// request tracks one dispatched operation through its lifecycle. States
// only ever advance; a failed request never reports success.
type request struct {
	id    uuid.UUID
	state RequestState
	log   *logrus.Entry
}

func newRequest(log *logrus.Logger, operation, database string) *request {
	r := &request{
		id: uuid.New(),
	}
	r.log = log.WithFields(logrus.Fields{
		"request_id": r.id,
		"operation":  operation,
		"database":   database,
	})
	r.log.WithField("state", r.state).Debug("request received")
	return r
}

// resolved records the registry name the request was bound to, which can
// differ from the requested one when the default was used.
func (r *request) resolved(database string) {
	r.state = RequestStateResolved
	r.log = r.log.WithField("resolved_database", database)
	r.log.WithField("state", r.state).Debug("database resolved")
}

func (r *request) executing() {
	r.state = RequestStateExecuting
	r.log.WithField("state", r.state).Debug("executing")
}

func (r *request) completed() {
	r.state = RequestStateCompleted
	r.log.WithField("state", r.state).Debug("request completed")
}

func (r *request) failed(err error) error {
	r.state = RequestStateFailed
	r.log.WithFields(logrus.Fields{"state": r.state, "error": err}).Warn("request failed")
	return err
}
