package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
	"crudstore.app/internal/client"
	"crudstore.app/internal/ids"
)

func main() {
	baseURL := os.Getenv("CRUDSTORE_SMOKE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	grpcAddr := os.Getenv("CRUDSTORE_SMOKE_GRPC_ADDR")
	if grpcAddr == "" {
		grpcAddr = "localhost:9090"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	status, err := client.CheckHealth(ctx, grpcAddr)
	if err != nil {
		log.Fatalf("grpc health at %s: %v", grpcAddr, err)
	}
	if status != healthpb.HealthCheckResponse_SERVING {
		log.Fatalf("grpc health at %s: %s", grpcAddr, status)
	}

	anon := client.New(baseURL)
	if _, err := anon.ListCategories(ctx); !errors.Is(err, auth.ErrUnauthenticated) {
		log.Fatalf("anonymous list: expected 401, got %v", err)
	}

	admin := client.New(baseURL)
	if _, err := admin.LogIn(ctx, "admin", "admin123"); err != nil {
		log.Fatalf("admin log-in: %v", err)
	}

	name := "smoke-" + ids.New()
	created, err := admin.CreateCategory(ctx, catalog.CategoryInput{Name: name, Description: "smoke test"})
	if err != nil {
		log.Fatalf("create category: %v", err)
	}
	cats, err := admin.ListCategories(ctx)
	if err != nil {
		log.Fatalf("list categories: %v", err)
	}
	if !containsCategory(cats, created.ID) {
		log.Fatalf("category %d missing from list", created.ID)
	}

	guest := client.New(baseURL)
	if _, err := guest.SignUp(ctx, "guest-"+ids.New(), "guest-pass", "INVITED"); err != nil {
		log.Fatalf("guest sign-up: %v", err)
	}
	if _, err := guest.CreateCategory(ctx, catalog.CategoryInput{Name: "forbidden-" + name[:10]}); !errors.Is(err, auth.ErrForbidden) {
		log.Fatalf("invited create: expected 403, got %v", err)
	}
	if _, err := guest.ListCategories(ctx); err != nil {
		log.Fatalf("invited list: %v", err)
	}

	if err := admin.DeleteCategory(ctx, created.ID); err != nil {
		log.Fatalf("delete category: %v", err)
	}
	cats, err = admin.ListCategories(ctx)
	if err != nil {
		log.Fatalf("list categories: %v", err)
	}
	if containsCategory(cats, created.ID) {
		log.Fatalf("category %d still listed after delete", created.ID)
	}

	fmt.Printf("smoke test passed: category=%d\n", created.ID)
}

func containsCategory(list []catalog.Category, id int64) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}
