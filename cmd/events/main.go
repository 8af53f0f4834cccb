package main

import (
	"context"
	"log"

	"github.com/dalemusser/eventhub/internal/app/bootstrap/events"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), events.Hooks); err != nil {
		log.Fatal(err)
	}
}
