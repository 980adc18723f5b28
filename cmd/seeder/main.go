package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/database"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/matchmaking"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{"DB_NAME": "fieldmatch.db"}
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

var fields = []facility.Field{
	{Name: "Court 1", Location: "North hall", Sport: "football", PricePerHour: 600},
	{Name: "Court 2", Location: "North hall", Sport: "football", PricePerHour: 600},
	{Name: "Outdoor pitch", Location: "Park side", Sport: "football", PricePerHour: 450},
}

var levels = []invitation.PlayerLevel{invitation.LevelBeginner, invitation.LevelIntermediate, invitation.LevelAdvanced, invitation.LevelAny}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	facilities := facility.New(db)

	for i := range fields {
		fields[i].ID = uuid.New().String()
		if err := facilities.UpsertField(ctx, fields[i]); err != nil {
			log.Fatalf("Failed to insert field %s: %s", fields[i].Name, err)
		}
	}
	log.Info("Seeded fields.", "count", len(fields))

	staff := facility.User{ID: uuid.New().String(), Name: "Front Desk", Email: "desk@example.com", Role: facility.RoleStaff}
	if err := facilities.UpsertUser(ctx, staff); err != nil {
		log.Fatalf("Failed to insert staff user: %s", err)
	}
	players := make([]facility.User, 0, 8)
	for i := range 8 {
		u := facility.User{
			ID:    uuid.New().String(),
			Name:  fmt.Sprintf("Seeder Player %c", 'A'+i),
			Email: fmt.Sprintf("player%d@example.com", i+1),
			Role:  facility.RoleUser,
		}
		if err := facilities.UpsertUser(ctx, u); err != nil {
			log.Fatalf("Failed to insert user %s: %s", u.Name, err)
		}
		players = append(players, u)
	}
	log.Info("Seeded users.", "count", len(players)+1)

	invitations := invitation.NewStore(db)
	bookings := booking.New(db)
	events := event.NewService(invitations, facilities, bookings)
	mm := matchmaking.NewService(invitations, facilities, bookings)

	// One event run by the front desk with a few interested players.
	start := time.Now().Add(72 * time.Hour).Truncate(time.Hour)
	evt, err := events.Create(ctx, staff.ID, event.CreateRequest{
		Name:        "Friday five-a-side",
		Description: "Mixed level evening game",
		FieldID:     fields[0].ID,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
	})
	if err != nil {
		log.Fatalf("Failed to create event: %s", err)
	}
	for _, p := range players[:3] {
		if _, err := events.ShowInterest(ctx, evt.ID, p.ID, ""); err != nil {
			log.Fatalf("Failed to register interest: %s", err)
		}
	}

	// Matchmaking requests from the remaining players.
	for i, p := range players[3:6] {
		when := start.Add(time.Duration(24*(i+1)) * time.Hour)
		_, err := mm.Create(ctx, p.ID, matchmaking.CreateRequest{
			FieldID:        fields[rand.Intn(len(fields))].ID,
			Description:    "Looking for players",
			StartTime:      when,
			EndTime:        when.Add(time.Hour),
			AvailableSlots: 1 + rand.Intn(matchmaking.MaxSlots),
			PlayerLevel:    levels[rand.Intn(len(levels))],
		})
		if err != nil {
			log.Fatalf("Failed to create matchmaking request: %s", err)
		}
	}
	log.Info("Seeding complete!", "eventID", evt.ID)
}
