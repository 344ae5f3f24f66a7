package tester

import (
	"context"
	"fmt"

	"github.com/ory/dockertest/v3"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetupDocker starts a postgres and a redis container for integration tests
// and returns a cleanup function.
func SetupDocker() (func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		logrus.Fatalf("Could not construct pool: %s", err)
	}

	// uses pool to try to connect to Docker
	err = pool.Client.Ping()
	if err != nil {
		logrus.Fatalf("Could not connect to Docker: %s", err)
	}

	pg, err := pool.Run("postgres", "16", []string{
		"POSTGRES_USER=emrgen",
		"POSTGRES_PASSWORD=emrgen",
		"POSTGRES_DB=article",
	})
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	rd, err := pool.Run("redis", "7", nil)
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	err = pool.Retry(func() error {
		dsn := fmt.Sprintf("host=localhost user=emrgen password=emrgen dbname=article port=%s sslmode=disable",
			pg.GetPort("5432/tcp"))
		gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	if err != nil {
		logrus.Fatalf("Could not connect to postgres: %s", err)
	}

	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{
			Addr: "localhost:" + rd.GetPort("6379/tcp"),
		})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		logrus.Fatalf("Could not connect to redis: %s", err)
	}

	return func() {
		if err := pool.Purge(pg); err != nil {
			logrus.Errorf("Could not purge resource: %s", err)
		}
		if err := pool.Purge(rd); err != nil {
			logrus.Errorf("Could not purge resource: %s", err)
		}
	}, nil
}
