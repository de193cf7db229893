package main

import (
	"log"
	"os"

	"toddlerdoc-backend/internal/pdfedit"
	"toddlerdoc-backend/internal/shared/server"
)

func main() {
	port := os.Getenv("PDFEDIT_PORT")
	if port == "" {
		port = "3000"
	}

	r := pdfedit.NewRouter()
	addr := server.Addr(port)
	log.Printf("Starting PDF edit server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
