// Command token issues an access token for local use. The organization is
// created when it does not exist yet.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"hookreg/internal/pkg/logger"
	"hookreg/internal/platform/auth"
	"hookreg/internal/platform/config"
	"hookreg/internal/platform/database"
	"hookreg/internal/platform/models"
	"hookreg/internal/platform/repositories"
)

func main() {
	userID := flag.String("user", "", "User ID to embed in the token")
	orgID := flag.String("org", "", "Active organization ID")
	orgName := flag.String("org-name", "", "Organization name when it has to be created")
	email := flag.String("email", "", "Email claim")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	if *userID == "" || *orgID == "" {
		fmt.Fprintln(os.Stderr, "-user and -org are required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx := context.Background()
	orgRepo := repositories.NewOrganizationRepository(db)
	org, err := orgRepo.GetByID(ctx, *orgID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load organization")
	}
	if org == nil {
		name := *orgName
		if name == "" {
			name = *orgID
		}
		org = &models.Organization{ID: *orgID, Slug: *orgID, Name: name, CreatedAt: time.Now().Unix()}
		if err := orgRepo.Create(ctx, org); err != nil {
			log.Fatal().Err(err).Msg("failed to create organization")
		}
		log.Info().Str("org_id", org.ID).Msg("organization created")
	}

	token, err := auth.NewTokenService(cfg.JWT).GenerateAccessToken(*userID, org.ID, *email)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	fmt.Println(token)
}
