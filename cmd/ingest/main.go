// Package main imports cycling activities from a CSV export or a FIT file into the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/cyclingcoach/internal/activities"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	csvPath := flag.String("csv", "", "path to a CSV activities export")
	fitPath := flag.String("fit", "", "path to a FIT activity file")
	baseURL := flag.String("url", "http://localhost:9000", "backend base URL")
	user := flag.String("user", "", "owner user id (uuid)")
	flag.Parse()

	_ = godotenv.Load()

	if (*csvPath == "") == (*fitPath == "") {
		log.Fatalln("exactly one of -csv or -fit must be set")
	}
	userID, err := uuid.Parse(*user)
	if err != nil {
		log.Fatalf("invalid -user [%s]: %s", *user, err)
	}

	var requests []activities.CreateActivityRequest
	if *csvPath != "" {
		requests, err = readCSVFile(*csvPath, userID)
	} else {
		var req activities.CreateActivityRequest
		req, err = readFITFile(*fitPath, userID)
		requests = append(requests, req)
	}
	if err != nil {
		log.Fatalf("read activities: %s", err)
	}

	secret := os.Getenv("ELEVENLABS_TOOL_SECRET")
	if secret == "" {
		log.Warnln("ELEVENLABS_TOOL_SECRET not set, sending requests without the tool secret")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := newIngestClient(*baseURL, secret, &http.Client{Timeout: 30 * time.Second})
	created, err := client.createAll(ctx, requests)
	if err != nil {
		log.Fatalf("ingest aborted after %d activities: %s", created, err)
	}

	fmt.Printf("imported %d activities\n", created)
}

func readCSVFile(path string, userID uuid.UUID) ([]activities.CreateActivityRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("close csv file: %s", err)
		}
	}()
	return parseCSV(f, userID)
}

func readFITFile(path string, userID uuid.UUID) (activities.CreateActivityRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return activities.CreateActivityRequest{}, fmt.Errorf("open fit: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("close fit file: %s", err)
		}
	}()
	return parseFIT(f, userID)
}
