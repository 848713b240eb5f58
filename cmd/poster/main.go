// Command poster renders a map poster from the command line without going
// through the order workflow. Useful for testing themes and sizes locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	renderapp "github.com/cartoprint/backend/internal/application/render"
	"github.com/cartoprint/backend/internal/domain/order"
	"github.com/cartoprint/backend/internal/domain/poster"
	"github.com/cartoprint/backend/internal/infrastructure/config"
	"github.com/cartoprint/backend/internal/infrastructure/geocode"
	"github.com/cartoprint/backend/internal/infrastructure/logger"
	"github.com/cartoprint/backend/internal/infrastructure/osm"
	"github.com/cartoprint/backend/internal/infrastructure/render"
)

func main() {
	city := flag.String("city", "", "city to render (required)")
	country := flag.String("country", "", "country the city is in (required)")
	theme := flag.String("theme", poster.DefaultTheme, "poster theme")
	size := flag.String("size", poster.DefaultSize, "paper size")
	distance := flag.Int("distance", poster.DefaultDistance, "map radius in meters")
	dpi := flag.Int("dpi", poster.DefaultDPI, "print resolution")
	output := flag.String("output", "poster.png", "output PNG path")
	listThemes := flag.Bool("list-themes", false, "list available themes and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	themeStore := render.NewThemeStore(cfg.Posters.ThemesDir, log)

	if *listThemes {
		for _, info := range themeStore.Describe() {
			if info.Description != "" {
				fmt.Printf("%-20s %s (%s)\n", info.Key, info.Name, info.Description)
			} else {
				fmt.Printf("%-20s %s\n", info.Key, info.Name)
			}
		}
		return
	}

	if *city == "" || *country == "" {
		fmt.Fprintln(os.Stderr, "both -city and -country are required")
		flag.Usage()
		os.Exit(2)
	}

	geocoder := geocode.NewClient(geocode.Config{
		BaseURL:     cfg.Geocoder.BaseURL,
		UserAgent:   cfg.Geocoder.UserAgent,
		MinInterval: cfg.Geocoder.MinInterval,
		Timeout:     cfg.Geocoder.Timeout,
	}, log)
	overpass := osm.NewClient(osm.Config{
		BaseURL:   cfg.Overpass.BaseURL,
		UserAgent: cfg.Overpass.UserAgent,
		Timeout:   cfg.Overpass.Timeout,
	}, log)
	renderer := render.NewRenderer(cfg.Posters.FontsDir, log)
	svc := renderapp.NewService(geocoder, overpass, themeStore, renderer, cfg.Render.PreviewWidth, log)

	ctx := context.Background()

	o, err := order.New("cli", *city, *country, *theme, *distance, *size, *dpi)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid options:", err)
		os.Exit(2)
	}

	coords, err := svc.Geocode(ctx, *city, *country)
	if err != nil {
		fmt.Fprintln(os.Stderr, "geocoding failed:", err)
		os.Exit(1)
	}
	o.Coordinates = &coords

	data, err := svc.RenderFinal(ctx, o)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rendering failed:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "writing output failed:", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s (%d bytes) for %s, %s\n", *output, len(data), *city, *country)
}
