package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/intermernet/activate/internal/activities"
	"github.com/intermernet/activate/internal/api"
	"github.com/intermernet/activate/internal/config"
	"github.com/intermernet/activate/internal/database"
	"github.com/intermernet/activate/internal/realtime"
	"github.com/intermernet/activate/internal/syncstate"
	"github.com/intermernet/activate/internal/timeutil"
	"github.com/intermernet/activate/internal/track"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

// main is the entry point for the Activate backend server.
func main() {
	// --- 1. Load Configuration ---
	// A .env file is convenient during development. In production these are
	// set as actual environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using environment variables from the system.")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("FATAL: Failed to load application configuration: %v", err)
	}

	// --- 2. Ensure Required Directories Exist ---
	for _, dir := range []string{cfg.DbPath, cfg.TracksPath, cfg.ActivitiesPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create directory %s: %v", dir, err)
		}
	}

	log.Println("INFO: Application directories verified.")

	// --- 3. Initialize Database Service ---
	dbService, err := database.NewService(filepath.Join(cfg.DbPath, "activate.db"), cfg.ActivitiesPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database service: %v", err)
	}
	defer dbService.Close()

	log.Println("INFO: Database service initialized successfully.")

	// --- 4. Apply Schema Migrations ---
	if err := dbService.Migrate(); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}

	log.Println("INFO: Database schema verified.")

	// --- 5. Load the Activity List ---
	list, err := activities.Load(dbService, track.WithSpeedRange(cfg.SpeedRange), track.WithLocation(cfg.Location))
	if err != nil {
		log.Fatalf("FATAL: Failed to load activity list: %v", err)
	}
	state := syncstate.New(dbService)
	if err := state.EnsureLoaded(); err != nil {
		log.Fatalf("FATAL: Failed to load sync state: %v", err)
	}

	log.Printf("INFO: Loaded %d activities.", list.Len())

	broker := realtime.NewBroker()

	// --- 6. Set Up API Server and Routes ---
	serverAPI := api.NewServer(cfg, list, state, broker, timeutil.RealClock{Location: cfg.Location})

	router := chi.NewRouter()
	serverAPI.RegisterRoutes(router)

	log.Println("INFO: API routes registered.")

	// --- 7. Start the HTTP Server ---
	log.Printf("INFO: Activate server starting on %s (%s units, %s)", cfg.ServerAddr, cfg.UnitSystem.Name, cfg.Location)

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
