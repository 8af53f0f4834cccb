package main

import (
	"context"
	"log"

	"github.com/dalemusser/eventhub/internal/app/bootstrap/users"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), users.Hooks); err != nil {
		log.Fatal(err)
	}
}
