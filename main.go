package main

import (
	"fmt"
	"log"

	"quore/app"
	"quore/config"
	"quore/config/appconf"
	"quore/internal/dbconn"
	"quore/internal/validator"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	db, err := dbconn.GetConn(
		dbconn.WithURL(appconf.DBURL()),
	)
	if err != nil {
		log.Fatal("db connection failed", err)
	}

	defer dbconn.Close()

	container, err := app.NewContainer(db, app.Config{
		MasterKey:      appconf.MasterKey(),
		CloneRoot:      appconf.CloneRoot(),
		CloneTimeout:   appconf.CloneTimeout(),
		InspectTimeout: appconf.InspectTimeout(),
	})
	if err != nil {
		log.Fatal("container setup failed: ", err)
	}

	if err := container.Migrate(); err != nil {
		log.Fatal("migration failed", err)
	}

	e := echo.New()
	e.Validator = validator.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	config.AddRoutes(e, container)

	log.Fatal(e.Start(fmt.Sprintf(":%s", appconf.Port())))
}
