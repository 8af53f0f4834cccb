package main

import (
	"context"
	"log"

	"github.com/dalemusser/eventhub/internal/app/bootstrap/posts"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), posts.Hooks); err != nil {
		log.Fatal(err)
	}
}
