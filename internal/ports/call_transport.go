package ports

import (
	"context"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

// CallTransport is a real-time voice call connection.
//
// Start returns the channel the transport delivers events on. The channel is
// closed when the call is torn down. Stop asks the remote side to end the call;
// events already in flight may still arrive.
type CallTransport interface {
	Start(ctx context.Context, target string, variables map[string]string) (<-chan domain.CallEvent, error)
	Stop() error
}

// TransportFactory builds one transport per session.
type TransportFactory func() CallTransport
