package main

import (
	"fmt"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/openboard/backend/internal/engine"
	"github.com/openboard/backend/internal/server"
	"github.com/openboard/backend/internal/store"
)

func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	st, err := store.Open(dataDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	log.Println("✅ Document store opened at", dataDir)

	srv := server.NewServer(engine.New(st))

	log.Printf("🚀 Server starting on %s\n", srv.Addr)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
