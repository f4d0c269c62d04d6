package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"faqgraph/backend/internal/graph"
	"faqgraph/backend/pkg/config"
	apperrors "faqgraph/backend/pkg/errors"
	"faqgraph/backend/pkg/logger"
)

func main() {
	adminEmail := flag.String("admin-email", "", "Seed an admin user with this email")
	adminPassword := flag.String("admin-password", "", "Password for the seeded admin user")
	force := flag.Bool("force", false, "Recreate the admin user even if it exists")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	client, err := graph.NewClient(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		log.Fatal("Failed to connect to graph store", zap.Error(err))
	}
	defer client.Close(ctx)

	repo := graph.NewRepository(client)

	log.Info("Creating constraints...")
	if err := createConstraints(ctx, client); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}

	log.Info("Creating indexes...")
	if err := createIndexes(ctx, client); err != nil {
		log.Warn("Failed to create some indexes (may already exist)", zap.Error(err))
	}

	log.Info("Ensuring vector index...", zap.String("index", cfg.VectorIndexName))
	if err := repo.EnsureVectorIndex(ctx, cfg.VectorIndexName, "Chunk", "embedding", cfg.EmbeddingDim); err != nil {
		log.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	if *adminEmail != "" {
		if *adminPassword == "" {
			log.Fatal("-admin-password is required when seeding an admin user")
		}
		seedAdmin(ctx, repo, log, *adminEmail, *adminPassword, *force)
	}

	log.Info("Seed completed")
}

func seedAdmin(ctx context.Context, repo *graph.Repository, log *zap.Logger, email, password string, force bool) {
	admin := graph.NewEntity(graph.UserSchema, map[string]any{"email": email})

	_, err := repo.FindEntity(ctx, admin)
	if err == nil && !force {
		log.Info("Admin user already exists, skipping creation (use -force to recreate)",
			zap.String("email", email),
		)
		os.Exit(0)
	}
	if err != nil && !apperrors.IsNotFound(err) {
		log.Fatal("Failed to look up admin user", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash admin password", zap.Error(err))
	}

	admin.Props["username"] = "admin"
	admin.Props["full_name"] = "Administrator"
	admin.Props["password"] = string(hash)

	if _, err := repo.SaveEntity(ctx, admin); err != nil {
		log.Fatal("Failed to create admin user", zap.Error(err))
	}
	log.Info("Admin user seeded", zap.String("email", email))
}

// createConstraints creates uniqueness constraints for data integrity
func createConstraints(ctx context.Context, exec graph.Executor) error {
	constraints := []string{
		"CREATE CONSTRAINT user_email_unique IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE",
		"CREATE CONSTRAINT session_id_unique IF NOT EXISTS FOR (s:Session) REQUIRE s.id IS UNIQUE",
		"CREATE CONSTRAINT document_id_unique IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE",
		"CREATE CONSTRAINT chunk_id_unique IF NOT EXISTS FOR (c:Chunk) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE",
	}

	for _, constraint := range constraints {
		if _, err := exec.Execute(ctx, constraint, nil); err != nil {
			// Constraints may already exist
			continue
		}
	}
	return nil
}

// createIndexes creates indexes for better query performance
func createIndexes(ctx context.Context, exec graph.Executor) error {
	indexes := []string{
		"CREATE INDEX message_position IF NOT EXISTS FOR (m:Message) ON (m.position)",
		"CREATE INDEX message_created_at IF NOT EXISTS FOR (m:Message) ON (m.created_at)",
		"CREATE INDEX session_created_at IF NOT EXISTS FOR (s:Session) ON (s.created_at)",
		"CREATE INDEX chunk_index IF NOT EXISTS FOR (c:Chunk) ON (c.index)",
		"CREATE INDEX entity_type IF NOT EXISTS FOR (e:Entity) ON (e.type)",
	}

	for _, idx := range indexes {
		if _, err := exec.Execute(ctx, idx, nil); err != nil {
			// Indexes may already exist
			continue
		}
	}

	// Full-text search over chunk and entity text (may not be supported in
	// all server versions)
	fullTextIndexes := []string{
		"CREATE FULLTEXT INDEX chunk_text IF NOT EXISTS FOR (c:Chunk) ON EACH [c.text]",
		"CREATE FULLTEXT INDEX entity_description IF NOT EXISTS FOR (e:Entity) ON EACH [e.name, e.description]",
	}

	for _, idx := range fullTextIndexes {
		if _, err := exec.Execute(ctx, idx, nil); err != nil {
			continue
		}
	}
	return nil
}
