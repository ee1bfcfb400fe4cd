// Команда workshop-token выпускает JWT для пользователя. Роль берётся из хранилища.
// С флагом -create сначала заводит пользователя: так появляется первый администратор,
// который дальше создаёт остальных через POST /api/v1/users.
//
//	CONFIG_PATH=config/local.yaml workshop-token -user 1
//	CONFIG_PATH=config/local.yaml workshop-token -create -email admin@example.com -name Admin -role ADMIN
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/config"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/jwt"
	"github.com/magabrotheeeer/workshop-registration/internal/migrations"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
	userservice "github.com/magabrotheeeer/workshop-registration/internal/services/user"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

func main() {
	userID := flag.Int64("user", 0, "user id")
	create := flag.Bool("create", false, "create the user before issuing a token")
	email := flag.String("email", "", "email of the new user")
	name := flag.String("name", "", "name of the new user")
	role := flag.String("role", string(models.RoleParticipant), "role of the new user")
	flag.Parse()
	if !*create && *userID <= 0 {
		log.Fatal("-user must be a positive id")
	}

	cfg := config.MustLoad()

	db, err := storage.New(cfg.Driver, cfg.DSN)
	if err != nil {
		log.Fatalf("cannot open storage: %s", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if *create {
		if err := migrations.Run(db.DB, cfg.Driver); err != nil {
			log.Fatalf("cannot apply migrations: %s", err)
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		*userID, err = userservice.New(db, logger).Bootstrap(ctx, models.DummyUser{
			Email: *email,
			Name:  *name,
			Role:  *role,
		})
		if err != nil {
			log.Fatalf("cannot create user: %s", err)
		}
	}

	user, err := db.GetUser(ctx, *userID)
	if err != nil {
		log.Fatalf("cannot load user: %s", err)
	}

	token, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL).GenerateToken(user.ID, string(user.Role))
	if err != nil {
		log.Fatalf("cannot issue token: %s", err)
	}
	fmt.Println(token)
}
