package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/config"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/http/handlers"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/http/routes"
	"go.uber.org/zap"
)

// Serverless entrypoint: the same gin application proxied behind API
// Gateway. Cold start builds the router once; invocations reuse it.
var ginLambda *ginadapter.GinLambda

func init() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ocrHandler := handlers.NewOCRHandler(
		handlers.DefaultClientFactory(cfg, logger),
		logger,
		cfg,
	)

	router := routes.NewRouter(ocrHandler, logger, cfg)
	ginLambda = ginadapter.New(router.SetupRoutes())
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
