package workflow

import (
	"github.com/deskbridge/deskbridge/internal/agentclient"
	apperrors "github.com/deskbridge/deskbridge/pkg/errors"
)

func agentWriteCoordsRequest(p *WriteCoordsParams, content string) agentclient.WriteCoordsRequest {
	return agentclient.WriteCoordsRequest{
		X:            p.X,
		Y:            p.Y,
		Content:      content,
		InsertMethod: p.InsertMethod,
		KeySequence:  p.KeySequence,
	}
}

// connectorErrToStepError maps the agent client's ConnectorError codes onto
// the write_coords step's AgentUnreachable/AgentTimeout/propagated taxonomy.
func connectorErrToStepError(err error) *StepError {
	var connErr *apperrors.ConnectorError
	if apperrors.As(err, &connErr) {
		switch connErr.Code {
		case apperrors.ConnectorTimeout:
			return newStepError(ErrAgentTimeout, "%s", connErr.Message)
		case apperrors.ConnectorConnection:
			return newStepError(ErrAgentUnreachable, "%s", connErr.Message)
		default:
			return newStepError(ErrConnectorFailed, "%s", connErr.Message)
		}
	}
	return newStepError(ErrConnectorFailed, "%v", err)
}
