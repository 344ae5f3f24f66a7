package tester

import (
	"fmt"
	"os"

	"github.com/emrgen/article/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	// each test binary gets its own directory so package suites can run in
	// parallel without deleting the database under another suite
	testPath = fmt.Sprintf("../../.test/%d/", os.Getpid())

	db *gorm.DB
)

func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	err := os.MkdirAll(testPath+"db", os.ModePerm)
	if err != nil {
		panic(err)
	}

	db, err = gorm.Open(sqlite.Open(testPath+"db/article.db"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

func RemoveDBFile() {
	err := os.RemoveAll(testPath)
	if err != nil {
		panic(err)
	}
}
