package app

import (
	"fmt"
	"os"

	"github.com/finassist/finchat-api/api"
	"github.com/finassist/finchat-api/config"
	"github.com/finassist/finchat-api/database"
	"github.com/finassist/finchat-api/router"
	"github.com/finassist/finchat-api/services/cron"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("The server needs PostgreSQL with the pgvector extension available\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	// Seed runtime config defaults and the bootstrap admin account
	if err := database.NewSeeder(store.DB()).SeedAll(); err != nil {
		return err
	}

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (builds all services and attaches middleware)
	runtime, err := router.SetupRoutes(app, store, getEnv)
	if err != nil {
		store.Close()
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(runtime.Sessions, runtime.Monitor, runtime.Config)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer closing external connections and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		runtime.Close()
		store.Close()
	}()

	// Get the PORT & Start the Server
	return server.Run()
}
