// Command send-status-email sends one complaint status email using the SMTP
// settings from configs/config.yaml, .env and the environment. It is meant for
// checking mail credentials without running the workers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"complaint-portal/internal/common/config"
	"complaint-portal/internal/common/logger"
	"complaint-portal/internal/models"
	"complaint-portal/internal/notification"
)

func main() {
	to := flag.String("to", "", "Recipient email address")
	name := flag.String("name", "Student", "Student name used in the greeting")
	complaintType := flag.String("type", "Lab", "Complaint type label (Lab, ICC)")
	status := flag.String("status", "in_progress", "Status to announce")
	id := flag.String("id", "test-complaint", "Complaint ID")
	logLevel := flag.String("log-level", "debug", "Log level")
	flag.Parse()

	if *to == "" {
		fmt.Println("Error: -to is required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg := notification.ConfigFrom(config.LoadSMTP())
	sender := notification.NewSender(cfg, notification.SenderDependencies{
		Logger: logger.NewStructured(*logLevel, "console"),
	})

	fmt.Printf("Sending via %s as %q <%s>\n", cfg.Address(), cfg.FromName, cfg.FromAddress)
	result := sender.SendStatusUpdate(context.Background(), models.NotificationRequest{
		RecipientEmail: *to,
		ComplaintType:  *complaintType,
		StudentName:    *name,
		Status:         *status,
		ComplaintID:    *id,
	})

	if !result.Sent {
		fmt.Printf("Not sent: %s\n", result.Err.Error())
		os.Exit(2)
	}
	fmt.Println("Sent.")
}
