package main

import (
	"log"
	"net/http"

	"reviewflow/internal/api"
	"reviewflow/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("reviewflow api listening on %s scorers=%q", cfg.APIAddr, cfg.Scorers)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
