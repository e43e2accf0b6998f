package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"lrukv/internal/models"
)

type profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	City    string `json:"city"`
	Company string `json:"company"`
	Visits  int    `json:"visits"`
}

// generateEntry builds an entry for one of keySpace keys, so repeated keys update earlier ones
func generateEntry(keySpace int) (*models.Entry, error) {
	value, err := json.Marshal(
		profile{
			Name:    gofakeit.Name(),
			Email:   gofakeit.Email(),
			City:    gofakeit.City(),
			Company: gofakeit.Company(),
			Visits:  gofakeit.Number(1, 1000),
		},
	)
	if err != nil {
		return nil, err
	}

	return &models.Entry{
		Key:       fmt.Sprintf("user:%d", gofakeit.Number(1, keySpace)),
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func main() {
	_ = godotenv.Load("deployments/.env")

	count := flag.Int("count", 1, "Number of entries")
	keySpace := flag.Int("keys", 100, "Number of distinct keys")
	flag.Parse()

	if *keySpace <= 0 {
		log.Fatalf("keys must be positive, got %d", *keySpace)
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	topic := os.Getenv("KAFKA_TOPIC")
	if brokers == "" || topic == "" {
		log.Fatal("KAFKA_BROKERS and KAFKA_TOPIC must be set")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	defer func(writer *kafka.Writer) {
		if err := writer.Close(); err != nil {
			log.Printf("Error in closing writer: %v", err)
		}
	}(writer)

	ctx := context.Background()
	for i := range *count {
		entry, err := generateEntry(*keySpace)
		if err != nil {
			log.Printf("Failed to generate entry %d: %v", i+1, err)
			continue
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("Failed to encode entry %d: %v", i+1, err)
			continue
		}

		err = writer.WriteMessages(
			ctx, kafka.Message{
				Key:   []byte(entry.Key),
				Value: data,
			},
		)

		if err != nil {
			log.Printf("Failed to send entry %d: %v", i+1, err)
		} else {
			fmt.Printf("Sent entry: %s\n", entry.Key)
		}
	}
}
