// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"daily-logger/internal/config"
	"daily-logger/internal/db"
	journalrepo "daily-logger/internal/journal/repository"
	journalservice "daily-logger/internal/journal/service"
	"daily-logger/internal/security"
	sleepdomain "daily-logger/internal/sleep/domain"
	sleeprepo "daily-logger/internal/sleep/repository"
	sleepservice "daily-logger/internal/sleep/service"
	taskdomain "daily-logger/internal/task/domain"
	taskrepo "daily-logger/internal/task/repository"
	userdomain "daily-logger/internal/user/domain"
	userrepo "daily-logger/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devUsername  = "dev"
	devFullName  = "Dev User"
	devPassword  = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.EncryptionSecret == "" {
		log.Fatal("ENCRYPTION_SECRET is not set; journal summaries cannot be encrypted")
	}

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	users := userrepo.NewPostgresRepository(database)
	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		return
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash(devPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	dev := &userdomain.User{Username: devUsername, FullName: devFullName, Email: devUserEmail, PasswordHash: hash}
	if err := users.Create(ctx, dev); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	sleep := sleepservice.NewService(sleeprepo.NewPostgresRepository(database), sleepdomain.NewValidator(time.Now), nil, nil)
	for daysAgo := 3; daysAgo >= 1; daysAgo-- {
		bed := today.AddDate(0, 0, -daysAgo).Add(-90 * time.Minute)
		wake := bed.Add(7*time.Hour + time.Duration(daysAgo)*15*time.Minute)
		if _, err := sleep.Create(ctx, dev.ID, bed.Format(time.RFC3339), wake.Format(time.RFC3339)); err != nil {
			log.Fatalf("create sleep session: %v", err)
		}
	}

	tasks := taskrepo.NewPostgresRepository(database)
	samples := []taskdomain.Task{
		{Title: "Plan the week", Body: "Block out focus time", Status: taskdomain.StatusCompleted, DueDate: today.AddDate(0, 0, -1)},
		{Title: "Read two chapters", Body: "Finish part one", Status: taskdomain.StatusInProgress, DueDate: today},
		{Title: "Book dentist appointment", Status: taskdomain.StatusPending, DueDate: today.AddDate(0, 0, 2)},
	}
	for i := range samples {
		t := samples[i]
		t.UserID = dev.ID
		if err := tasks.Create(ctx, &t); err != nil {
			log.Fatalf("create task: %v", err)
		}
	}

	cipher, err := security.NewCipher(cfg.EncryptionSecret)
	if err != nil {
		log.Fatalf("cipher: %v", err)
	}
	journal := journalservice.NewService(journalrepo.NewPostgresRepository(database), cipher, nil, nil)
	summaries := []string{"Slow start, good evening walk.", "Productive day at work.", "Tired but got the important things done."}
	for i, summary := range summaries {
		date := today.AddDate(0, 0, -(len(summaries) - i)).Format(taskdomain.DateLayout)
		rating := json.RawMessage(strconv.Itoa(6 + i))
		if _, err := journal.Create(ctx, dev.ID, summary, rating, date); err != nil {
			log.Fatalf("create journal log: %v", err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
}
