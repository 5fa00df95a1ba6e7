// File: cmd/diagnostic/sms_diagnostic.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iyunix/go-courier/internal/config"
	"github.com/iyunix/go-courier/internal/deliverycode"
	"github.com/iyunix/go-courier/internal/services"
	"github.com/iyunix/go-courier/internal/services/sms"
)

// Sends one sample delivery code through the configured SMS provider.
func main() {
	phone := flag.String("phone", "", "destination phone number (Brazilian national or E.164)")
	name := flag.String("name", "Cliente Teste", "customer name used in the message")
	envFile := flag.String("env", ".env", "env file to load")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Could not load %s: %v", *envFile, err)
	}
	if *phone == "" {
		log.Fatal("-phone is required")
	}

	cfg := config.FromEnv()
	logger := services.NewLogger("sms-diagnostic", "development", "debug")

	normalized, err := sms.NormalizePhone(*phone)
	if err != nil {
		log.Fatalf("Invalid phone: %v", err)
	}

	provider, err := sms.NewProvider(&cfg.SMS, logger)
	if err != nil {
		log.Fatalf("Provider setup failed: %v", err)
	}
	fmt.Printf("Provider: %s\n", provider.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := provider.HealthCheck(ctx); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Println("Health check passed")

	msg := sms.Message{Phone: normalized, CustomerName: *name, Code: deliverycode.Generate()}
	start := time.Now()
	if err := provider.SendDeliveryCode(ctx, msg); err != nil {
		log.Fatalf("Send failed after %v: %v", time.Since(start), err)
	}
	fmt.Printf("Sent to %s in %v\n", services.MaskPhone(normalized), time.Since(start))
	fmt.Printf("Body: %s\n", msg.Body())
}
