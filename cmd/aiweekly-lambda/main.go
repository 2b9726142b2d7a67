package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"AIWeekly/internal/app"
	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
)

// response is the envelope scheduled-invocation consumers parse: an HTTP-like
// status code plus the run result serialized into the body.
type response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func handler(ctx context.Context, event json.RawMessage) (response, error) {
	logger := logging.NewJSON(os.Getenv("LOG_LEVEL"))
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("request_id", lc.AwsRequestID)
	}
	logger.Info("starting pipeline execution", "event", string(event))

	result := app.Execute(ctx, logger)

	body, err := json.Marshal(result)
	if err != nil {
		return response{}, err
	}

	status := 200
	if result.Status != domain.RunCompleted {
		status = 500
	}
	return response{StatusCode: status, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
