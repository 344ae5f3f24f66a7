package tester

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupIsProcessScoped(t *testing.T) {
	// suites run as separate test binaries, each must get its own database
	// so removing one never touches a live connection in another
	assert.True(t, strings.HasSuffix(testPath, fmt.Sprintf("/%d/", os.Getpid())))

	Setup()
	defer RemoveDBFile()

	require.NotNil(t, TestDB())

	_, err := os.Stat(testPath + "db/article.db")
	require.NoError(t, err)
}
