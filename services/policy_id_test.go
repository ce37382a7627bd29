package services_test

import (
	"regexp"
	"testing"

	"github.com/ShashankBhake/st-shield-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeIDGenerator_UniqueAndFormatted(t *testing.T) {
	gen, err := services.NewSnowflakeIDGenerator(7)
	require.NoError(t, err)

	format := regexp.MustCompile(`^SSST[0-9A-Z]+$`)
	seen := make(map[string]struct{}, 5000)
	for i := 0; i < 5000; i++ {
		id := gen.NewPolicyID()
		assert.Regexp(t, format, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSnowflakeIDGenerator_RejectsOutOfRangeNode(t *testing.T) {
	_, err := services.NewSnowflakeIDGenerator(1024)
	assert.Error(t, err)
}
