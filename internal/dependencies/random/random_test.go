package random_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/rpsarena/internal/dependencies/mocks"
	"github.com/mcoot/rpsarena/internal/dependencies/random"
)

func TestCryptoRandomIntnInRange(t *testing.T) {
	r := random.New()
	for i := 0; i < 100; i++ {
		v := r.Intn(3)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 3)
	}
	assert.Equal(t, 0, r.Intn(0))
}

func TestPick(t *testing.T) {
	r := mocks.NewMockRandom()
	r.QueueIntn(2, 4)

	items := []string{"rock", "paper", "scissors"}
	assert.Equal(t, "scissors", random.Pick(r, items))
	assert.Equal(t, "paper", random.Pick(r, items))
	assert.Equal(t, "rock", random.Pick(r, items), "empty queue falls back to 0")
	assert.Equal(t, 3, r.Calls())

	assert.Equal(t, "", random.Pick(r, []string{}))
	assert.Equal(t, 3, r.Calls(), "empty items never draw")
}
