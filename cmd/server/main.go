package main

import (
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"

	"pocketgrove/internal/content"
	"pocketgrove/internal/rng"
	"pocketgrove/internal/session"
	"pocketgrove/internal/web"
)

func main() {
	contentPath := getenv("GROVE_CONTENT", "data/grove.yaml")
	c, err := content.Load(contentPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("content %s not found, using built-in defaults", contentPath)
		c, err = content.Default(), nil
	}
	if err != nil {
		log.Fatal(err)
	}

	saves, err := session.NewFileStore(getenv("GROVE_SAVE_DIR", "saves"))
	if err != nil {
		log.Fatal(err)
	}

	srv := &web.Server{
		Content: c,
		Store:   session.NewMemoryStore[*web.Entry](),
		Saves:   saves,
		Rand:    rng.Crypto{},
		Hub:     web.NewHub(),
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":" + getenv("PORT", "8080")
	}
	log.Printf("listening on %s (%d species)", addr, c.Catalog.Len())
	log.Fatal(http.ListenAndServe(addr, srv.Routes()))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
