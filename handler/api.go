package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/gamedrops/droplist/ops"
	"github.com/gamedrops/droplist/registry"
)

// SubscriptionAgent applies one subscription change. registry.Updater is
// the production implementation.
type SubscriptionAgent interface {
	Apply(
		ctx context.Context, address string, action registry.Action,
	) (ops.OperationResult, error)
}

type SubscribeRequest struct {
	Email  string `json:"email"`
	Action string `json:"action"`
}

type ApiResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type apiHandler struct {
	Agent SubscriptionAgent
	Log   *log.Logger
}

// handleRequest implements the subscription endpoint independently of the
// transport. A 204 returns a nil payload; every other status carries an
// ApiResponse body.
func (h *apiHandler) handleRequest(
	ctx context.Context, method, body string,
) (status int, payload *ApiResponse) {
	if method == http.MethodOptions {
		return http.StatusNoContent, nil
	} else if method != http.MethodPost {
		return http.StatusMethodNotAllowed,
			&ApiResponse{Message: "Method not allowed"}
	}

	req := &SubscribeRequest{}
	if err := json.Unmarshal([]byte(body), req); err != nil {
		return http.StatusBadRequest, &ApiResponse{Message: "Invalid JSON body"}
	}

	result, err := h.Agent.Apply(
		ctx, req.Email, registry.Action(req.Action),
	)

	switch {
	case err == nil:
		h.Log.Printf("%s: %s", result, req.Email)
		return http.StatusOK, &ApiResponse{
			Message: fmt.Sprintf("Successfully %sd %s", req.Action, req.Email),
		}
	case errors.Is(err, registry.ErrInvalidAddress):
		return http.StatusBadRequest, &ApiResponse{Message: "Invalid email"}
	case errors.Is(err, registry.ErrInvalidAction):
		return http.StatusBadRequest, &ApiResponse{Message: "Invalid action"}
	case errors.Is(err, ops.ErrExternal):
		return http.StatusBadGateway, &ApiResponse{
			Message: "Failed to update subscribers",
			Detail:  err.Error(),
		}
	case errors.Is(err, ops.ErrExhausted):
		return http.StatusInternalServerError,
			&ApiResponse{Message: "Failed after multiple attempts"}
	default:
		return http.StatusInternalServerError, &ApiResponse{
			Message: "Server error", Detail: err.Error(),
		}
	}
}

var corsHeaders = map[string]string{
	"access-control-allow-origin":  "*",
	"access-control-allow-methods": "POST,OPTIONS",
	"access-control-allow-headers": "Content-Type",
}

// HandleApiRequest adapts handleRequest to the API Gateway Lambda proxy
// payload. CORS headers land on every response so browser clients can post
// from the dashboard's origin.
func (h *apiHandler) HandleApiRequest(
	ctx context.Context, req *awsevents.APIGatewayV2HTTPRequest,
) *awsevents.APIGatewayV2HTTPResponse {
	res := &awsevents.APIGatewayV2HTTPResponse{
		Headers: make(map[string]string, len(corsHeaders)+1),
	}
	for name, value := range corsHeaders {
		res.Headers[name] = value
	}

	body, err := requestBody(req)
	if err != nil {
		res.StatusCode = http.StatusBadRequest
		h.encodeResponse(res, &ApiResponse{Message: "Invalid JSON body"})
		logApiResponse(h.Log, req, res, err)
		return res
	}

	status, payload := h.handleRequest(
		ctx, req.RequestContext.HTTP.Method, body,
	)
	res.StatusCode = status

	if payload != nil {
		h.encodeResponse(res, payload)
	}
	logApiResponse(h.Log, req, res, nil)
	return res
}

func (h *apiHandler) encodeResponse(
	res *awsevents.APIGatewayV2HTTPResponse, payload *ApiResponse,
) {
	res.Headers["content-type"] = "application/json"
	encoded, err := json.Marshal(payload)

	if err != nil {
		// A two string field struct always marshals.
		panic("failed to encode API response: " + err.Error())
	}
	res.Body = string(encoded)
}

// requestBody decodes the raw request payload. The prod API Gateway base64
// encodes POST bodies; local test servers do not.
func requestBody(req *awsevents.APIGatewayV2HTTPRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	} else if decoded, err := base64.StdEncoding.DecodeString(req.Body); err != nil {
		return "", fmt.Errorf("failed to base64 decode body: %s", err)
	} else {
		return string(decoded), nil
	}
}

func logApiResponse(
	logger *log.Logger,
	req *awsevents.APIGatewayV2HTTPRequest,
	res *awsevents.APIGatewayV2HTTPResponse,
	err error,
) {
	reqId := req.RequestContext.RequestID
	desc := req.RequestContext.HTTP
	errMsg := ""

	if err != nil {
		errMsg = ": " + err.Error()
	}

	logger.Printf(`%s: %s "%s %s %s" %d%s`,
		reqId,
		desc.SourceIP, desc.Method, desc.Path, desc.Protocol, res.StatusCode,
		errMsg,
	)
}
