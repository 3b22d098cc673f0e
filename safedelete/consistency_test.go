package safedelete_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/softdelete-go/safedelete"
)

func Test_GetConsistencyLevel_Defaults_To_Strong(t *testing.T) {
	assert.Equal(t, safedelete.StrongConsistency, safedelete.GetConsistencyLevel(context.Background()))
}

func Test_GetConsistencyLevel_When_Set_In_Context(t *testing.T) {
	eventual := safedelete.WithEventualConsistency(context.Background())
	strongAgain := safedelete.WithStrongConsistency(eventual)

	assert.Equal(t, safedelete.EventualConsistency, safedelete.GetConsistencyLevel(eventual))
	assert.Equal(t, safedelete.StrongConsistency, safedelete.GetConsistencyLevel(strongAgain))
	assert.Equal(t, "eventual", safedelete.EventualConsistency.String())
	assert.Equal(t, "unknown", safedelete.ConsistencyLevel(7).String())
}
