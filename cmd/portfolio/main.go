package main

import (
	"log"

	"github.com/MrSnakeDoc/portfolio/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ portfolio failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ portfolio failed to start: %v", err)
	}
}
