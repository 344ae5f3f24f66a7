package server

import (
	"os"
	"testing"

	"github.com/emrgen/article/internal/tester"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()

	os.Exit(code)
}
