package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/studynotion-backend/internal/app"
)

func main() {
	var configPath string
	var fixturesPath string
	flag.StringVar(&configPath, "config", "", "directory holding app.env")
	flag.StringVar(&fixturesPath, "fixtures", "cmd/seed/fixtures.yaml", "YAML fixture file")
	flag.Parse()

	_ = godotenv.Load()

	fixtures, err := app.LoadFixtures(fixturesPath)
	if err != nil {
		fmt.Printf("load fixtures: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.New(ctx, configPath)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	res, err := a.Seed(ctx, fixtures)
	if err != nil {
		a.Log.Error("seed failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d categories, %d users, %d courses (%d already present)\n",
		res.Categories, res.Users, res.Courses, res.Skipped)
}
