package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/C0de-cloud/Notes-API/api"
	"github.com/C0de-cloud/Notes-API/mq/sqsmq"
	"github.com/C0de-cloud/Notes-API/store/dynamo"
)

const (
	DynamoDBTable   = "Notes"
	SQSCleanupQueue = "NoteCleanupQueue"
)

func main() {
	ctx := context.Background()
	devMode := os.Getenv("DEV_MODE") == "true"

	notesStore, err := dynamo.NewDynamoNotesStore(ctx, devMode, os.Getenv("DYNAMODB_ENDPOINT"), DynamoDBTable)
	if err != nil {
		log.Fatalf("Failed to create dynamodb store: %v", err)
	}

	cleanupQueue, err := sqsmq.NewSQSMessageQueue(ctx, devMode, os.Getenv("SQS_ENDPOINT"), SQSCleanupQueue)
	if err != nil {
		log.Fatalf("Failed to create SQS MQ: %v", err)
	}

	jwtSecret, err := base64.StdEncoding.DecodeString(os.Getenv("JWT_SECRET"))
	if err != nil {
		log.Fatalf("Failed to decode base64 jwtSecret: %v", err)
	}
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	notesApi := api.NewNotesAPI(notesStore, cleanupQueue, jwtSecret, shutdownCtx)

	mux := http.NewServeMux()
	notesApi.RegisterRoutes(mux)

	hostPort := "8080"
	if p := os.Getenv("HOST_PORT"); p != "" {
		hostPort = p
	}
	log.Printf("Starting server on host port: %s\n", hostPort)
	log.Fatal(http.ListenAndServe(":"+hostPort, mux))
}
